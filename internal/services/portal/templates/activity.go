package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// ActivityEntry is one audited action in the activity feed.
type ActivityEntry struct {
	When   string
	Action string
	Detail string
}

// ActivityFeed renders the audit activity table. The tbody carries a
// stable id so the live socket client can prepend rows as events arrive.
func ActivityFeed(entries []ActivityEntry, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="activity-feed" data-activity-ws="`)
		b.WriteString(routepath.AppActivityWS)
		b.WriteString(`"><div class="activity-live"><span class="activity-live-dot"></span>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.activity.live")))
		b.WriteString(`</div>`)
		if len(entries) == 0 {
			b.WriteString(`<p class="empty-state">`)
			b.WriteString(templ.EscapeString(T(loc, "portal.activity.empty")))
			b.WriteString(`</p>`)
		}
		b.WriteString(`<table class="table activity-table"><thead><tr><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.activity.column_when")))
		b.WriteString(`</th><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.activity.column_action")))
		b.WriteString(`</th><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.activity.column_detail")))
		b.WriteString(`</th></tr></thead><tbody id="activity-rows">`)
		for _, entry := range entries {
			b.WriteString(`<tr><td>`)
			b.WriteString(templ.EscapeString(entry.When))
			b.WriteString(`</td><td><code>`)
			b.WriteString(templ.EscapeString(entry.Action))
			b.WriteString(`</code></td><td>`)
			b.WriteString(templ.EscapeString(entry.Detail))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</tbody></table></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
