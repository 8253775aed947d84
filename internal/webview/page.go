package webview

import (
	"html/template"
)

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div style="padding: 20px; font-family: Arial">
<h1>{{.Title}}</h1>
<div>
<h2>{{.Heading}}</h2>
<pre>{{.Status}}</pre>
</div>
</div>
</body>
</html>
`))

type pageData struct {
	Title   string
	Heading string
	Status  string
}
