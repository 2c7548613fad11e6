package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"daily-digest/internal/model"
)

// Prefixes for sections whose fetch failed.
const (
	WeatherErrorPrefix = "Error fetching weather data: "
	NewsErrorPrefix    = "Error fetching news data: "
)

type data struct {
	Weather string
	News    string
}

//go:embed digest.tmpl
var digestTpl string

var compiled = template.Must(template.New("digest").Parse(strings.TrimSuffix(digestTpl, "\n")))

// Compose builds the digest from the two sections. A failed section is
// rendered as its error sentence in place of the content.
func Compose(weather, news model.Section) (model.Digest, error) {
	return compose(compiled, weather, news)
}

func compose(tpl *template.Template, weather, news model.Section) (model.Digest, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data{
		Weather: render(weather, WeatherErrorPrefix),
		News:    render(news, NewsErrorPrefix),
	}); err != nil {
		return model.Digest{}, fmt.Errorf("digest: render: %w", err)
	}
	return model.Digest{Subject: model.DigestSubject, Body: buf.String()}, nil
}

func render(s model.Section, errPrefix string) string {
	if !s.OK() {
		return errPrefix + s.Err.Error()
	}
	return s.Text
}
