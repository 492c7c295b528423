package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}
	if got := Tf("Saved %d files", 3); got != "Saved 3 files" {
		t.Fatalf("Tf fallback = %q", got)
	}
	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}
	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestEmbeddedRussianCatalog(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("ru")
	if got := T("Translation finished"); got != "Перевод завершён" {
		t.Fatalf("T(ru) = %q", got)
	}
	if got := T("no such message"); got != "no such message" {
		t.Fatalf("unknown msgid should pass through, got %q", got)
	}

	Init("xx")
	if got := T("Translation finished"); got != "Translation finished" {
		t.Fatalf("T(xx) = %q", got)
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	found := false
	for _, l := range langs {
		if l == "ru" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Languages() = %v, want ru included", langs)
	}
}

func TestTKeepsFormatVerbs(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("ru")
	if got := T("Saved %s"); got != "Сохранено: %s" {
		t.Fatalf("T(ru) = %q, want verbs kept", got)
	}
	if got := T("50% done"); got != "50% done" {
		t.Fatalf("T(unknown with percent) = %q", got)
	}
	if got := Tf("Saved %s", "pack.zip"); got != "Сохранено: pack.zip" {
		t.Fatalf("Tf(ru) = %q", got)
	}
}
