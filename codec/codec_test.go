package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/mclocalizer/content"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want content.Format
	}{
		{"en_us.lang", content.FormatLang},
		{"EN_US.JSON", content.FormatJSON},
		{"assets/mod/lang/en_us.json", content.FormatJSON},
		{`config\ftbquests\quests\lang\en_us.snbt`, content.FormatSNBT},
		{"chapter.Snbt", content.FormatSNBT},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	for _, name := range []string{"readme.txt", "en_us", "pack.mcmeta"} {
		_, err := DetectFormat(name)
		assert.ErrorIs(t, err, content.ErrUnsupportedFormat, name)
		assert.False(t, IsLocalizationFile(name))
	}
}

func TestDecodeEncode_LangScenario(t *testing.T) {
	doc, err := Decode("item.sword=Sword\n# comment\nitem.axe=Axe", content.FormatLang)
	require.NoError(t, err)
	assert.Equal(t, []string{"item.sword", "item.axe"}, doc.Keys())
	assert.Equal(t, []string{"# comment"}, doc.Comments)

	doc.Set("item.sword", content.Scalar("Épée"))

	out, err := Encode(doc, content.FormatLang, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "item.sword=Épée\nitem.axe=Axe\n", out)

	opts := DefaultOptions()
	opts.PreserveComments = true
	out, err = Encode(doc, content.FormatLang, opts)
	require.NoError(t, err)
	assert.Equal(t, "# comment\n\nitem.sword=Épée\nitem.axe=Axe\n", out)
}

func TestDecodeEncode_SNBTScenario(t *testing.T) {
	doc, err := Decode("key: [\n\t\"a\",\n\t\"b\"\n]", content.FormatSNBT)
	require.NoError(t, err)

	out, err := Encode(doc, content.FormatSNBT, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "key: [\n\t\t\"a\",\n\t\t\"b\"\n\t]")
}

func TestRoundTripAllFormats(t *testing.T) {
	inputs := map[content.Format]string{
		content.FormatLang: "a.b=One\nc.d=Two words\n",
		content.FormatJSON: "{\n\t\"a.b\": \"One\",\n\t\"n\": 5,\n\t\"list\": [\"x\", \"y\"]\n}\n",
		content.FormatSNBT: "{\n\ta.b: \"One\",\n\tlist: [\n\t\t\"x\",\n\t\t\"y\"\n\t]\n}\n",
	}
	for format, text := range inputs {
		t.Run(format.String(), func(t *testing.T) {
			doc, err := Decode(text, format)
			require.NoError(t, err)

			out, err := Encode(doc, format, DefaultOptions())
			require.NoError(t, err)

			back, err := Decode(out, format)
			require.NoError(t, err)
			assert.True(t, doc.Equal(back), "re-decoded document differs:\n%s", out)
		})
	}
}

func TestDecodeNamed(t *testing.T) {
	doc, format, err := DecodeNamed("ru_ru.json", `{"k": "v"}`)
	require.NoError(t, err)
	assert.Equal(t, content.FormatJSON, format)
	assert.Equal(t, 1, doc.Len())

	_, _, err = DecodeNamed("ru_ru.json", `{"k":`)
	assert.ErrorIs(t, err, content.ErrMalformedContent)

	_, _, err = DecodeNamed("ru_ru.txt", "k=v")
	assert.ErrorIs(t, err, content.ErrUnsupportedFormat)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	doc := content.NewDocument()
	doc.Set("quest.title", content.Scalar("Start"))
	doc.Set(snbtHideKey, content.Scalar("false"))

	for _, name := range []string{"out/en_us.lang", "out/en_us.json", "out/en_us.snbt"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		format, err := DetectFormat(name)
		require.NoError(t, err)
		require.NoError(t, WriteFile(path, doc, format, DefaultOptions()))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		back, err := Decode(string(data), format)
		require.NoError(t, err)
		v, ok := back.Get("quest.title")
		require.True(t, ok, name)
		assert.Equal(t, "Start", v.Scalar)

		_, hidden := back.Get(snbtHideKey)
		assert.Equal(t, format != content.FormatSNBT, hidden, name)
	}

	err := WriteFile(filepath.Join(dir, "x.txt"), doc, content.Format(99), DefaultOptions())
	assert.ErrorIs(t, err, content.ErrUnsupportedFormat)
}

const snbtHideKey = "default_hide_dependency_lines"
