package dashboard

const pageTemplate = `<!DOCTYPE html>
<html lang="nl">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Receptvoorspeller</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; }
        .header { background: #2c3e50; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
        .header small { color: #bdc3c7; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(340px, 1fr)); gap: 20px; }
        .card { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 20px; }
        .card h3 { margin-top: 0; color: #2c3e50; }
        .slider { display: grid; grid-template-columns: 200px 1fr 90px; gap: 10px; align-items: center; margin: 8px 0; }
        .slider input[type=number] { width: 80px; }
        .metric { display: flex; justify-content: space-between; margin: 10px 0; font-size: 18px; }
        .metric-value { font-weight: bold; color: #2c3e50; }
        .flash { padding: 12px 16px; border-radius: 6px; margin-bottom: 20px; }
        .flash.success { background: #d4edda; color: #155724; }
        .flash.warning { background: #fff3cd; color: #856404; }
        .flash.error, .error { background: #f8d7da; color: #721c24; }
        .error { padding: 12px 16px; border-radius: 6px; }
        .hint { color: #856404; font-size: 14px; }
        .hidden { display: none; }
        table { width: 100%; border-collapse: collapse; font-size: 14px; }
        th, td { padding: 6px 8px; text-align: left; border-bottom: 1px solid #ddd; }
        th { background: #f8f9fa; }
        button { padding: 6px 14px; border: none; border-radius: 4px; background: #3498db; color: white; cursor: pointer; }
        button.danger { background: #e74c3c; }
        .actions { display: flex; gap: 10px; align-items: center; margin-top: 10px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Receptvoorspeller</h1>
            <small>Model {{.Model.Version}} ({{.Model.Trees}} bomen)</small>
        </div>

        {{with .Flash}}<div class="flash {{.Level}}" id="flash">{{.Message}}</div>{{end}}

        <form method="post" action="/recipes" id="recipe-form">
            <input type="hidden" name="q" value="{{.Query}}">
            <div class="grid">
                <div class="card">
                    <h3>Grondstoffen (kg)</h3>
                    {{range .Sliders}}
                    <div class="slider">
                        <label for="n{{.Index}}">{{.Name}}</label>
                        <input type="range" id="r{{.Index}}" data-index="{{.Index}}" min="{{.Min}}" max="{{.Max}}" step="1" value="{{.Value}}">
                        <input type="number" id="n{{.Index}}" name="m{{.Index}}" data-index="{{.Index}}" min="{{.Min}}" max="{{.Max}}" step="1" value="{{.Value}}">
                    </div>
                    {{end}}
                    <div class="actions">
                        <button type="submit" formaction="/estimate">Bereken</button>
                        <span>Totaal: <strong id="total">{{.Total}}</strong> kg</span>
                    </div>
                </div>

                <div class="card">
                    <h3>Voorspelling</h3>
                    <div id="error" class="error{{if not .Error}} hidden{{end}}">{{.Error}}</div>
                    <div id="prediction"{{if not .Prediction}} class="hidden"{{end}}>
                        <div class="metric"><span>Viscositeit</span><span class="metric-value" id="viscosity">{{with .Prediction}}{{.Viscosity}}{{end}}</span></div>
                        <div class="metric"><span>pH</span><span class="metric-value" id="ph">{{with .Prediction}}{{.PH}}{{end}}</span></div>
                        <div class="metric"><span>DS</span><span class="metric-value" id="ds">{{with .Prediction}}{{.DS}}{{end}}</span></div>
                        <p class="hint" id="out-of-range">{{if .OutOfRange}}Buiten trainingsbereik: {{range $i, $n := .OutOfRange}}{{if $i}}, {{end}}{{$n}}{{end}}{{end}}</p>
                        <details>
                            <summary>Percentages</summary>
                            <table>
                                <tbody>
                                {{range .Percentages}}<tr><td>{{.Name}}</td><td id="p{{.Index}}">{{.Value}} %</td></tr>{{end}}
                                </tbody>
                            </table>
                        </details>
                    </div>

                    <h3>Recept opslaan</h3>
                    <div class="actions">
                        <input type="text" name="name" placeholder="Naam van het recept">
                        <button type="submit">Opslaan</button>
                    </div>
                </div>
            </div>
        </form>

        {{if .HasRecipes}}
        <div class="card" id="recipes">
            <h3>Opgeslagen recepten</h3>
            <form method="get" action="/" class="actions">
                <input type="text" name="q" value="{{.Query}}" placeholder="Zoeken">
                <button type="submit">Filter</button>
            </form>
            <table>
                <thead>
                    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}<th></th></tr>
                </thead>
                <tbody>
                {{range .Recipes}}
                    <tr>
                        {{range .Cells}}<td>{{.}}</td>{{end}}
                        <td>
                            <form method="post" action="/recipes/{{.ID}}/delete">
                                <input type="hidden" name="q" value="{{$.Query}}">
                                <button type="submit" class="danger">Verwijder</button>
                            </form>
                        </td>
                    </tr>
                {{else}}
                    <tr><td colspan="15">Geen recepten gevonden.</td></tr>
                {{end}}
                </tbody>
            </table>

            <h3>Vergelijken</h3>
            <form method="get" action="/" class="actions">
                <input type="hidden" name="q" value="{{.Query}}">
                <select name="compare" multiple size="4">
                    {{range .Recipes}}<option value="{{.ID}}"{{if .Selected}} selected{{end}}>{{index .Cells 0}}</option>{{end}}
                </select>
                <button type="submit">Vergelijk</button>
            </form>
            {{if .Compare}}
            <table id="compare">
                <thead>
                    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
                </thead>
                <tbody>
                {{range .Compare}}<tr>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>{{end}}
                </tbody>
            </table>
            {{end}}

            <div class="actions">
                <a href="/recipes/export"><button type="button">Download Excel</button></a>
                <form method="post" action="/recipes/reset">
                    <button type="submit" class="danger">Reset</button>
                </form>
            </div>
        </div>
        {{end}}
    </div>

    <script>
        const count = 10;
        let ws = null;

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');
            ws.onmessage = function(event) {
                render(JSON.parse(event.data));
            };
            ws.onclose = function() {
                ws = null;
            };
        }

        function masses() {
            const out = [];
            for (let i = 0; i < count; i++) {
                const v = parseFloat(document.getElementById('n' + i).value);
                out.push(isNaN(v) ? 0 : v);
            }
            return out;
        }

        function send() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({ masses: masses() }));
            }
        }

        function render(data) {
            const error = document.getElementById('error');
            const prediction = document.getElementById('prediction');
            if (data.masses) {
                document.getElementById('total').textContent = data.total.toFixed(2);
            }
            if (data.error) {
                error.textContent = data.error;
                error.classList.remove('hidden');
                prediction.classList.add('hidden');
                return;
            }
            error.classList.add('hidden');
            prediction.classList.remove('hidden');
            document.getElementById('viscosity').textContent = data.labels.Viscosity;
            document.getElementById('ph').textContent = data.labels.PH;
            document.getElementById('ds').textContent = data.labels.DS;
            const hint = document.getElementById('out-of-range');
            hint.textContent = data.outOfRange ? 'Buiten trainingsbereik: ' + data.outOfRange.join(', ') : '';
            (data.percentages || []).forEach(function(p, i) {
                const cell = document.getElementById('p' + i);
                if (cell) {
                    cell.textContent = p.toFixed(2) + ' %';
                }
            });
        }

        for (let i = 0; i < count; i++) {
            const range = document.getElementById('r' + i);
            const number = document.getElementById('n' + i);
            range.addEventListener('input', function() {
                number.value = range.value;
                send();
            });
            number.addEventListener('input', function() {
                range.value = number.value;
                send();
            });
        }

        connect();
    </script>
</body>
</html>`
