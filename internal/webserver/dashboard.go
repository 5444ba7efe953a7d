package webserver

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/graphs"
)

type dashboardData struct {
	Limit   int
	Bounds  enrollment.Bounds
	Graph   *graphs.Graph
	Error   string
	Width   template.CSS
	Height  template.CSS
	Options map[string]any
}

func (d dashboardData) Empty() bool {
	return d.Error == "" && d.Graph.Empty()
}

func (d dashboardData) NodeCount() int {
	return len(d.Graph.Nodes)
}

// dashboard renders the page with the graph for the requested limit already
// embedded, later slider moves go over the websocket.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Limit:   s.bounds.Default,
		Bounds:  s.bounds,
		Graph:   graphs.NewGraph(),
		Width:   template.CSS(s.vis.Width),
		Height:  template.CSS(s.vis.Height),
		Options: s.vis.NetworkOptions(),
	}
	status := http.StatusOK

	limit, err := s.bounds.Parse(r.URL.Query().Get("limit"))
	if err != nil {
		data.Error = err.Error()
		status = http.StatusBadRequest
	} else {
		data.Limit = limit
		g, err := s.loader.Load(r.Context(), limit)
		if err != nil {
			s.logger.Error("Failed to load graph", "limit", limit, "error", err)
			data.Error = fmt.Sprintf("No se pudo cargar el grafo: %v", err)
			status = http.StatusInternalServerError
		} else {
			data.Graph = g
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboardPage.Execute(w, data); err != nil {
		s.logger.Error("Failed to render dashboard", "error", err)
	}
}

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="es">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ARAT Visualizer</title>
    <style>
        * {
            margin: 0;
            box-sizing: border-box;
        }
        body {
            display: flex;
            min-height: 100vh;
            font-family: sans-serif;
        }
        #sidebar {
            width: 18rem;
            padding: 1.5rem;
            background: #f0f2f6;
        }
        #sidebar label {
            display: block;
            margin-bottom: 0.5rem;
        }
        #sidebar input {
            width: 100%;
        }
        main {
            flex: 1;
            padding: 1.5rem 2rem;
        }
        .caption {
            color: #6b6b6b;
            margin: 0.25rem 0 1rem;
        }
        .banner {
            padding: 1rem;
            border-radius: 0.5rem;
            margin-bottom: 1rem;
        }
        .warning {
            background: #fffce7;
            color: #926c05;
        }
        .error {
            background: #ffecec;
            color: #7d353b;
        }
        #graph {
            width: {{.Width}};
            height: {{.Height}};
        }
        [hidden] {
            display: none !important;
        }
    </style>
    <script type="text/javascript"
      src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
  </head>
  <body>
    <aside id="sidebar">
      <form id="controls" method="get" action="/">
        <label for="limit">Cantidad de relaciones a mostrar</label>
        <input type="range" id="limit" name="limit"
          min="{{.Bounds.Min}}" max="{{.Bounds.Max}}" step="1" value="{{.Limit}}">
        <output id="limit-value" for="limit">{{.Limit}}</output>
        <noscript><button type="submit">Actualizar</button></noscript>
      </form>
      <p id="node-count">Nodos visualizados: <span id="node-count-value">{{.NodeCount}}</span></p>
    </aside>
    <main>
      <h1>ARAT</h1>
      <p class="caption">Vista anonimizada de relaciones Académicas.</p>
      <div id="error" class="banner error"{{if not .Error}} hidden{{end}}>{{.Error}}</div>
      <div id="spinner" hidden>Cargando grafo desde Neo4j...</div>
      <div id="warning" class="banner warning"{{if not .Empty}} hidden{{end}}>No se encontraron datos. ¿Ya ejecutaste el script de ingesta?</div>
      <div id="graph"{{if or .Empty .Error}} hidden{{end}}></div>
    </main>
    <script type="text/javascript">
const options = {{.Options}};
const initial = {{.Graph}};

const container = document.getElementById("graph");
const nodes = new vis.DataSet(initial.nodes);
const edges = new vis.DataSet(initial.edges);
const network = new vis.Network(container, { nodes, edges }, options);

const slider = document.getElementById("limit");
const sliderValue = document.getElementById("limit-value");
const nodeCount = document.getElementById("node-count-value");
const spinner = document.getElementById("spinner");
const warning = document.getElementById("warning");
const errorBanner = document.getElementById("error");

function draw(msg) {
  spinner.hidden = true;
  if (msg.type === "error") {
    errorBanner.textContent = msg.error;
    errorBanner.hidden = false;
    return;
  }
  errorBanner.hidden = true;
  nodes.clear();
  edges.clear();
  nodes.add(msg.nodes);
  edges.add(msg.edges);
  nodeCount.textContent = msg.nodeCount;
  warning.hidden = msg.nodeCount > 0;
  container.hidden = msg.nodeCount === 0;
  network.fit();
}

const scheme = location.protocol === "https:" ? "wss://" : "ws://";
const ws = new WebSocket(scheme + location.host + "/ws");
ws.onmessage = (e) => draw(JSON.parse(e.data));

slider.addEventListener("input", () => {
  sliderValue.textContent = slider.value;
});
slider.addEventListener("change", () => {
  const limit = parseInt(slider.value, 10);
  history.replaceState(null, "", "?limit=" + limit);
  if (ws.readyState !== WebSocket.OPEN) {
    document.getElementById("controls").submit();
    return;
  }
  spinner.hidden = false;
  ws.send(JSON.stringify({ limit }));
});
    </script>
  </body>
</html>`))
