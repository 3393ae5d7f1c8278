package main

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// promMetricsHandler renders expvar-published metrics in Prometheus
// text exposition format. Known engine metrics get type and help
// metadata; other numeric expvars fall back to untyped gauges.
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	type meta struct {
		typ, help string
		isMap     bool
		label     string
	}
	metas := map[string]meta{
		"agentflow_executions_started_total": {typ: "counter", help: "Flow executions started"},
		"agentflow_executions_total":         {typ: "counter", help: "Flow executions finished", isMap: true, label: "status"},
		"agentflow_active_executions":        {typ: "gauge", help: "Flow executions currently running"},
		"agentflow_node_executions_total":    {typ: "counter", help: "Node dispatches", isMap: true, label: "type"},
		"agentflow_node_failures_total":      {typ: "counter", help: "Node dispatches that failed", isMap: true, label: "type"},
		"agentflow_tokens_used_total":        {typ: "counter", help: "Tokens consumed by agent sessions"},
		"agentflow_cost_usd_total":           {typ: "counter", help: "Estimated spend in USD"},
	}

	varNames := make([]string, 0, 64)
	expvar.Do(func(kv expvar.KeyValue) {
		varNames = append(varNames, kv.Key)
	})
	sort.Strings(varNames)

	for _, name := range varNames {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			if iv, ok := v.(*expvar.Int); ok {
				fmt.Fprintf(w, "# TYPE %s gauge\n", name)
				fmt.Fprintf(w, "%s %s\n", name, iv.String())
			}
			continue
		}
		fmt.Fprintf(w, "# HELP %s %s\n", name, strings.ReplaceAll(m.help, "\n", " "))
		fmt.Fprintf(w, "# TYPE %s %s\n", name, m.typ)
		if m.isMap {
			mp, ok := v.(*expvar.Map)
			if !ok {
				continue
			}
			sub := make([]expvar.KeyValue, 0, 8)
			mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
			sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
			for _, kv := range sub {
				fmt.Fprintf(w, "%s{%s=\"%s\"} %s\n", name, m.label, escapeLabel(kv.Key), kv.Value.String())
			}
			continue
		}
		fmt.Fprintf(w, "%s %s\n", name, v.String())
	}
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
