package templates

import "stock-viewer/models"

// AppTitle is the window and page title
const AppTitle = "Stock Viewer"

// StateEvent is the runtime event carrying every applied view state
const StateEvent = "view:state"

// LoadingTemplateID is the template holding the in-flight panels markup
const LoadingTemplateID = "loading-panels"

// selectedRange keeps the selector on the range of the shown or pending fetch
func selectedRange(state models.ViewState) string {
	switch {
	case state.Loaded != nil:
		return state.Loaded.RangeLabel
	case state.Loading != nil:
		return state.Loading.RangeLabel
	default:
		return models.DefaultRangeLabel
	}
}

// pageScript wires the page to state changes. In the desktop shell the runtime
// reports every applied state and the panels are refetched. In a plain browser
// the loading markup is copied into the panels container as the search form
// submits, so stale results never sit on screen during a fetch. The container
// element itself stays in place because htmx swaps the response into it.
const pageScript = `
if (window.runtime && window.runtime.EventsOn) {
  window.runtime.EventsOn("` + StateEvent + `", function () {
    htmx.ajax("GET", "/api/panels", {target: "#` + PanelsID + `", swap: "outerHTML"});
  });
} else {
  document.addEventListener("htmx:beforeRequest", function (evt) {
    var form = evt.detail.elt;
    if (!form || form.id !== "search-form" || form.elements.symbol.value.trim() === "") {
      return;
    }
    var tpl = document.getElementById("` + LoadingTemplateID + `");
    var panels = document.getElementById("` + PanelsID + `");
    var loading = tpl && tpl.content.getElementById("` + PanelsID + `");
    if (!panels || !loading) {
      return;
    }
    panels.innerHTML = loading.innerHTML;
    panels.dataset.kind = loading.dataset.kind;
  });
}`

const stylesheet = `
body{margin:0;font-family:system-ui,sans-serif;background:#fafafa;color:#212121}
.app-header{padding:40px;text-align:center;color:#fff;background:linear-gradient(135deg,#1976d2,#0d47a1)}
.app-header h1{margin:0 0 8px;font-size:32px}
.app-header p{margin:0;opacity:.9}
main{padding:30px;display:flex;flex-direction:column;gap:25px}
.search-form{display:flex;gap:16px;align-items:flex-end;background:#fff;padding:24px;border-radius:12px;box-shadow:0 2px 8px rgba(0,0,0,.08)}
.field{display:flex;flex-direction:column;gap:6px;font-size:13px;color:#757575}
.field input,.field select{padding:10px 12px;border:1px solid #e0e0e0;border-radius:8px;font-size:15px}
button.primary{padding:12px 24px;border:0;border-radius:8px;background:#1976d2;color:#fff;font-weight:600;cursor:pointer}
.panel{background:#fff;border-radius:12px;padding:24px;box-shadow:0 2px 10px rgba(0,0,0,.1)}
.panel[hidden]{display:none}
.error-panel{background:#ffebee;color:#c62828;display:flex;gap:12px}
.error-title{margin:0 0 4px}
.summary-header{display:flex;justify-content:space-between;align-items:center}
.symbol{margin:0;font-size:32px}
.as-of{margin:4px 0 0;color:#757575}
.current{font-size:32px;font-weight:700;margin-right:12px}
.change.up{color:#43a047}
.change.down{color:#e53935}
.cards{display:grid;grid-template-columns:repeat(4,1fr);gap:16px}
.card{display:flex;flex-direction:column;gap:6px;padding:16px;border-radius:10px;box-shadow:0 2px 6px rgba(0,0,0,.08)}
.card-label{font-size:13px;color:#757575}
.card-value{font-size:24px;font-weight:700}
.line-chart{width:100%;height:360px}
.line-chart .axis{stroke:#e0e0e0;stroke-width:2}
.line-chart .line{stroke:#1976d2;stroke-width:3;stroke-linecap:round;stroke-linejoin:round}
.line-chart .area{fill:rgba(25,118,210,.1)}
.line-chart .point{fill:#1976d2;opacity:0}
.line-chart .point:hover{opacity:1}
.line-chart text{font-size:11px;fill:#757575}
.loading{display:flex;flex-direction:column;align-items:center;gap:12px;color:#1976d2}
.spinner{width:50px;height:50px;border:4px solid #bbdefb;border-top-color:#1976d2;border-radius:50%;animation:spin 1s linear infinite}
#fetch-indicator{width:20px;height:20px}
@keyframes spin{to{transform:rotate(360deg)}}
`
