package chat

import (
	"fmt"
	"html/template"
	"io"
)

var transcriptTemplate = template.Must(template.New("transcript").Parse(`<section class="offer-chat" id="{{.ContainerID}}">
<header class="offer-chat__title">{{.View.Title}}</header>
{{- if .View.Empty}}
<p class="offer-chat__empty">{{.View.Placeholder}}</p>
{{- else}}
<ol class="offer-chat__messages">
{{- range .View.Items}}
<li class="offer-chat__message {{if .Self}}offer-chat__message--self{{else}}offer-chat__message--other{{end}}" data-id="{{.ID}}">
<span class="offer-chat__sender">{{.Sender}}</span>
<p class="offer-chat__text">{{.Text}}</p>
{{- if .TimeLabel}}
<time datetime="{{.SentAt.UTC.Format "2006-01-02T15:04:05Z07:00"}}">{{.TimeLabel}}</time>
{{- end}}
</li>
{{- end}}
</ol>
{{- end}}
</section>
`))

// WriteHTML writes view as an HTML fragment. All message content is
// contextually escaped; nothing from the view is emitted as markup.
func WriteHTML(w io.Writer, containerID string, view View) error {
	if containerID == "" {
		containerID = DefaultContainerID
	}
	data := struct {
		ContainerID string
		View        View
	}{ContainerID: containerID, View: view}
	if err := transcriptTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}
	return nil
}
