package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/openrover/rover-core/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"deg": func(v float64) string {
		return fmt.Sprintf("%.1f°", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Rover Core</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.idle { color: #888; }
.alert { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Rover Core</h1>

<h2>Drive</h2>
<table>
<tr><th>Left motor</th><td class="{{if .LeftMagnitude}}ok{{else}}idle{{end}}">{{.LeftMagnitude}}</td></tr>
<tr><th>Right motor</th><td class="{{if .RightMagnitude}}ok{{else}}idle{{end}}">{{.RightMagnitude}}</td></tr>
<tr><th>Failsafe</th><td class="{{if .FailsafeTriggered}}alert{{else}}ok{{end}}">{{if .FailsafeTriggered}}TRIGGERED{{else}}clear{{end}}</td></tr>
</table>

<h2>Servos</h2>
<table>
<tr><th>Active</th><td>{{if .ServoActive}}yes{{else}}no{{end}}</td></tr>
{{range $i, $a := .ServoAngles}}<tr><th>Channel {{$i}}</th><td>{{deg $a}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Telemetry</h2>
<table>
<tr><th>Log</th><td class="{{if .LogReady}}ok{{else}}alert{{end}}">{{if .LogReady}}ready{{else}}not ready{{end}}</td></tr>
<tr><th>File</th><td>{{.Config.LogFile}}</td></tr>
<tr><th>Sync interval</th><td>{{.Config.SyncInterval}} writes</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Failsafe triggers</th><td>{{.Counts.FailsafeTriggers}}</td></tr>
<tr><th>Failsafe clears</th><td>{{.Counts.FailsafeClears}}</td></tr>
<tr><th>Command frames</th><td>{{.Counts.CommandFrames}}</td></tr>
<tr><th>Decode errors</th><td>{{.Counts.DecodeErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Failsafe timeout</th><td>{{.Config.FailsafeTimeoutMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
