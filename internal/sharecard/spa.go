package sharecard

import (
	"fmt"
	"html/template"
	"strings"
)

var spaTmpl = template.Must(template.New("spa").Parse(spaTemplate))

// SPAShell returns the HTML stub served for routes the edge does not handle
// itself. It hands the original path to the single-page app as a hash
// fragment so client-side routing can take over.
func SPAShell(baseURL, siteName string) (string, error) {
	var b strings.Builder
	err := spaTmpl.Execute(&b, struct {
		BaseURL  string
		SiteName string
	}{BaseURL: baseURL, SiteName: siteName})
	if err != nil {
		return "", fmt.Errorf("render spa shell: %w", err)
	}
	return b.String(), nil
}

const spaTemplate = `<!DOCTYPE html>
<html lang="id">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.SiteName}}</title>
	<script>
		// Hand the current path to the SPA as a hash fragment.
		const path = window.location.pathname + window.location.search;
		window.location.href = {{.BaseURL}} + '#' + path.substring(1);
	</script>
</head>
<body>
	<p>Mengalihkan ke aplikasi...</p>
</body>
</html>
`
