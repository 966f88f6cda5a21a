package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// StaffRow is a staff member entry in the settings directory.
type StaffRow struct {
	Name     string
	Email    string
	JoinedAt string
}

// LanguageForm renders the language preference form on the settings page.
func LanguageForm(activeLang string, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<form class="language-form" method="post" action="`)
		b.WriteString(routepath.AppSettingsLanguage)
		b.WriteString(`"><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.settings.language")))
		b.WriteString(`</span><select class="select" name="lang">`)
		for _, option := range LanguageOptions(activeLang, loc) {
			b.WriteString(`<option value="`)
			b.WriteString(templ.EscapeString(option.Tag))
			b.WriteString(`"`)
			if option.Active {
				b.WriteString(` selected`)
			}
			b.WriteString(`>`)
			b.WriteString(templ.EscapeString(option.Label))
			b.WriteString(`</option>`)
		}
		b.WriteString(`</select></label><p class="form-hint">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.settings.language_hint")))
		b.WriteString(`</p><button type="submit" class="btn btn-primary btn-sm">`)
		b.WriteString(templ.EscapeString(T(loc, "core.action.save")))
		b.WriteString(`</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ProfileCard shows the signed-in principal on the settings page.
func ProfileCard(viewer Viewer, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="profile-card card"><h3>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.settings.profile")))
		b.WriteString(`</h3><p class="profile-name">`)
		b.WriteString(templ.EscapeString(viewer.DisplayName))
		b.WriteString(`</p><p class="profile-kind">`)
		b.WriteString(templ.EscapeString(viewer.Kind))
		b.WriteString(`</p></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// StaffDirectory lists registered staff members for staff viewers.
func StaffDirectory(rows []StaffRow, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="staff-directory"><h3>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.settings.staff_directory")))
		b.WriteString(`</h3>`)
		if len(rows) == 0 {
			b.WriteString(`</section>`)
			_, err := io.WriteString(w, b.String())
			return err
		}
		b.WriteString(`<table class="table staff-table"><tbody>`)
		for _, row := range rows {
			b.WriteString(`<tr><td>`)
			b.WriteString(templ.EscapeString(row.Name))
			b.WriteString(`</td><td>`)
			b.WriteString(templ.EscapeString(row.Email))
			b.WriteString(`</td><td>`)
			b.WriteString(templ.EscapeString(row.JoinedAt))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</tbody></table></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
