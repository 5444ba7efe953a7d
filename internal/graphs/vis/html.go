package vis

import "html/template"

// page is a standalone document, the same widget the dashboard embeds but without
// the controls around it.
var page = template.Must(template.New("vis").Parse(`<!DOCTYPE html>
<html lang="es">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * {
            margin: 0;
        }
        #graph {
            width: {{.Width}};
            height: {{.Height}};
        }
    </style>
    <script type="text/javascript"
      src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
  </head>
  <body>
    <div id="graph"></div>
    <script type="text/javascript">
const graph = {{.Graph}};
const options = {{.Options}};

const container = document.getElementById("graph");
const data = {
  nodes: new vis.DataSet(graph.nodes),
  edges: new vis.DataSet(graph.edges),
};
new vis.Network(container, data, options);
    </script>
  </body>
</html>`))
