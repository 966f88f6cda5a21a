package i18n

import (
	"strings"
	"testing"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
)

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	fallback := GetCatalog("missing-locale")
	if fallback != base {
		t.Fatal("expected fallback to en-US catalog")
	}
}

func TestGetCatalogCoversPortalCodes(t *testing.T) {
	codes := []apperrors.Code{
		apperrors.CodeUnknown,
		apperrors.CodeClientNameEmpty,
		apperrors.CodeClientEmailInvalid,
		apperrors.CodeClientEmailTaken,
		apperrors.CodeClientNotFound,
		apperrors.CodeRequestTitleEmpty,
		apperrors.CodeRequestClientIDEmpty,
		apperrors.CodeRequestNotFound,
		apperrors.CodeRequestInvalidStatus,
		apperrors.CodeRequestInvalidStatusTransition,
		apperrors.CodeRequestAttachmentMissing,
		apperrors.CodeRequestAttachmentInvalid,
		apperrors.CodeRequestFilterInvalid,
		apperrors.CodeGrantInvalid,
		apperrors.CodeGrantExpired,
		apperrors.CodeGrantUsed,
		apperrors.CodeGrantMismatch,
		apperrors.CodeForbidden,
		apperrors.CodeStaffNotFound,
		apperrors.CodeStaffEmailInvalid,
		apperrors.CodeStaffEmailTaken,
		apperrors.CodeMagicLinkNotFound,
		apperrors.CodeMagicLinkExpired,
		apperrors.CodeMagicLinkUsed,
		apperrors.CodeSessionNotFound,
		apperrors.CodeSessionExpired,
		apperrors.CodeStorageUnavailable,
		apperrors.CodeNotFound,
	}
	for _, locale := range []string{"en-US", "pt-BR"} {
		cat := GetCatalog(locale)
		if cat.Locale() != locale {
			t.Fatalf("locale = %q, want %q", cat.Locale(), locale)
		}
		for _, code := range codes {
			got := cat.Format(string(code), nil)
			if got == string(code) {
				t.Errorf("locale %s has no message for code %s", locale, code)
			}
		}
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	cat := GetCatalog("en-US")
	got := cat.Format(string(apperrors.CodeRequestInvalidStatusTransition), map[string]string{
		"from": "cancelled",
		"to":   "fulfilled",
	})
	if !strings.Contains(got, "cancelled") || !strings.Contains(got, "fulfilled") {
		t.Fatalf("formatted message %q missing metadata values", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format("code", nil) != "hello <no value>" {
		t.Fatal("expected template to render missing metadata")
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestFormatTemplateExecutionErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ call .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ call .Name }}" {
		t.Fatal("expected template fallback on execute error")
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[Code]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}
