package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/stream"
)

type diagnosticsInput struct {
	Class string `path:"class" enum:"console,pageError,network" doc:"Diagnostics event class"`
	Clear bool   `query:"clear" doc:"Truncate the buffer after reading it"`
}

func registerDiagnosticsHandlers(api huma.API, svc Service) {
	type diagnosticsOutput struct {
		Body struct {
			Class   string `json:"class"`
			Count   int    `json:"count"`
			Entries any    `json:"entries"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-diagnostics", Method: http.MethodGet, Path: "/diagnostics/{class}", Summary: "Read captured diagnostics for the current session", Tags: []string{"Diagnostics"}},
		func(ctx context.Context, input *diagnosticsInput) (*diagnosticsOutput, error) {
			var (
				entries any
				count   int
				err     error
			)
			switch diagnostics.EventClass(input.Class) {
			case diagnostics.ClassConsole:
				var es []diagnostics.ConsoleEntry
				es, err = svc.ConsoleLogs(input.Clear)
				entries, count = es, len(es)
			case diagnostics.ClassPageError:
				var es []diagnostics.PageErrorEntry
				es, err = svc.PageErrorLog(input.Clear)
				entries, count = es, len(es)
			case diagnostics.ClassNetwork:
				var es []diagnostics.NetworkEntry
				es, err = svc.NetworkLog(input.Clear)
				entries, count = es, len(es)
			default:
				return nil, huma.Error400BadRequest("unknown diagnostics class: " + input.Class)
			}
			if err != nil {
				return nil, mapErr(err)
			}
			out := &diagnosticsOutput{}
			out.Body.Class = input.Class
			out.Body.Count = count
			out.Body.Entries = entries
			return out, nil
		})
}

// streamHandler upgrades to WebSocket and forwards broker events as JSON
// text frames until the client disconnects.
func streamHandler(broker *stream.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Warn("diagnostics stream upgrade failed", "error", err, "remote", r.RemoteAddr)
			return
		}

		id, events := broker.Subscribe()
		slog.Info("diagnostics stream client connected", "client_id", id, "remote", r.RemoteAddr)

		go func() {
			defer func() {
				broker.Unsubscribe(id)
				_ = conn.Close()
				slog.Info("diagnostics stream client disconnected", "client_id", id)
			}()

			// Drain client frames so close handshakes are observed.
			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					if _, err := wsutil.ReadClientText(conn); err != nil {
						return
					}
				}
			}()

			for {
				select {
				case evt, ok := <-events:
					if !ok {
						return
					}
					data, err := json.Marshal(evt)
					if err != nil {
						slog.Debug("diagnostics stream encode failed", "error", err)
						continue
					}
					if err := wsutil.WriteServerText(conn, data); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()
	}
}
