package api

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/mediatype"
)

// Player dimensions advertised for video embeds
const (
	playerWidth  = 996
	playerHeight = 626
)

const modifiedLayout = "2006-01-02 15:04:05"

var infoPageTemplate = template.Must(template.New("info").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Name}}</title>
    <meta http-equiv="refresh" content="0; url={{.URL}}" />
    <meta property="og:title" content="{{.Name}}" />
    <meta property="og:description" content="Size: {{.Size}} · Last modified: {{.Modified}}" />
    <meta property="og:url" content="{{.URL}}" />
{{- if .IsImage}}
    <meta property="og:image" content="{{.URL}}" />
    <meta name="twitter:card" content="summary_large_image">
    <meta name="twitter:image:src" content="{{.URL}}">
{{- else if .IsVideo}}
    <meta property="twitter:player:height" content="{{.PlayerHeight}}"/>
    <meta property="twitter:player:width" content="{{.PlayerWidth}}"/>
    <meta property="twitter:player:stream" content="{{.URL}}"/>
    <meta property="twitter:player:stream:content_type" content="{{.ContentType}}"/>
    <meta property="og:video" content="{{.URL}}"/>
    <meta property="og:video:secure_url" content="{{.URL}}"/>
    <meta property="og:video:height" content="{{.PlayerHeight}}"/>
    <meta property="og:video:width" content="{{.PlayerWidth}}"/>
    <meta property="og:video:type" content="{{.ContentType}}"/>
    <meta property="twitter:image" content="0"/>
    <meta property="twitter:card" content="player"/>
{{- end}}
</head>
<body>
    <h1>File: {{.Name}}</h1>
    <p><strong>Size:</strong> {{.Size}}</p>
    <p><strong>Last Modified:</strong> {{.Modified}}</p>
    <p><a href="{{.URL}}" download>Download File</a></p>
</body>
</html>
`))

type infoPageData struct {
	Name         string
	URL          string
	Size         string
	Modified     string
	ContentType  string
	IsImage      bool
	IsVideo      bool
	PlayerWidth  int
	PlayerHeight int
}

func renderInfoPage(info *simpleshare.FileInfo) ([]byte, error) {
	data := infoPageData{
		Name:         info.Name,
		URL:          info.URL,
		Size:         humanSize(info.Size),
		Modified:     formatModified(info.ModTime),
		ContentType:  info.ContentType,
		IsImage:      mediatype.IsImage(info.ContentType),
		IsVideo:      mediatype.IsVideo(info.ContentType),
		PlayerWidth:  playerWidth,
		PlayerHeight: playerHeight,
	}

	var buf bytes.Buffer
	if err := infoPageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render info page: %w", err)
	}
	return buf.Bytes(), nil
}

// humanSize formats n bytes with two decimals in base 1024 units
func humanSize(n int64) string {
	suffixes := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(suffixes)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", size, suffixes[i])
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.UTC().Format(modifiedLayout)
}
