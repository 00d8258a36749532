package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sort"
	"sync"

	"github.com/reveille-app/reveille/internal/bridge"
	"github.com/reveille-app/reveille/internal/engine"
	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/prefs"
)

// Server answers client commands on a Unix socket. Alarm triggers live in
// the engine and fire with or without a connected client; the socket is
// only the control surface.
type Server struct {
	path   string
	engine *engine.Engine
	bridge *bridge.ActionBridge
	prefs  *prefs.Store
	log    *slog.Logger

	mu sync.Mutex
	ln net.Listener
}

func NewServer(path string, e *engine.Engine, b *bridge.ActionBridge, p *prefs.Store, log *slog.Logger) *Server {
	return &Server{path: path, engine: e, bridge: b, prefs: p, log: log}
}

// Serve listens until ctx is cancelled. A stale socket file from a previous
// run is removed before binding.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("daemon listening", "socket", s.path)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var cmd Command
		var resp Response
		if err := json.Unmarshal(line, &cmd); err != nil {
			resp = errResponse(fmt.Errorf("malformed command: %w", err))
		} else {
			resp = s.dispatch(ctx, cmd)
		}

		if err := enc.Encode(resp); err != nil {
			s.log.Error("write response", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, cmd Command) Response {
	data, err := s.handle(ctx, cmd)
	if err != nil {
		return errResponse(err)
	}
	return okResponse(data)
}

func (s *Server) handle(ctx context.Context, cmd Command) (any, error) {
	switch cmd.Op {
	case OpPing:
		return "pong", nil

	case OpAlarmSave:
		var req SaveAlarmRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		res, err := s.engine.SaveAlarm(ctx, &model.Alarm{
			ID:          req.ID,
			RecordingID: req.RecordingID,
			Hour:        req.Hour,
			Minute:      req.Minute,
			AmPm:        req.AmPm,
			Days:        model.Days(req.Days),
			Enabled:     req.Enabled,
			AudioURI:    req.AudioURI,
		})
		if err != nil {
			return nil, err
		}
		return SaveAlarmResponse{Alarm: res.Alarm, Degraded: res.Degraded, Armed: res.Armed}, nil

	case OpAlarmList:
		return s.engine.Alarms(ctx)

	case OpAlarmGet:
		var req AlarmIDRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		return s.engine.Alarm(ctx, req.ID)

	case OpAlarmToggle:
		var req ToggleRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		res, err := s.engine.SetEnabled(ctx, req.ID, req.Enabled)
		if err != nil {
			return nil, err
		}
		return SaveAlarmResponse{Alarm: res.Alarm, Degraded: res.Degraded, Armed: res.Armed}, nil

	case OpAlarmDelete:
		var req AlarmIDRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		return nil, s.engine.DeleteAlarm(ctx, req.ID)

	case OpAlarmPreview:
		var req AlarmIDRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		return nil, s.engine.Preview(ctx, req.ID)

	case OpAlarmState:
		var req AlarmIDRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		return StateResponse{State: s.engine.State(req.ID).String()}, nil

	case OpRecAdd:
		var req AddRecordingRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		return s.engine.AddRecording(ctx, engine.NewRecording{
			Name:     req.Name,
			Path:     req.Path,
			Duration: DurationMS(req.Duration),
			FileSize: req.FileSize,
		})

	case OpRecList:
		return s.engine.Recordings(ctx)

	case OpRecDelete:
		var req AlarmIDRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		return nil, s.engine.DeleteRecording(ctx, req.ID)

	case OpRecRename:
		var req RenameRecordingRequest
		if err := decode(cmd.Data, &req); err != nil {
			return nil, err
		}
		return nil, s.engine.RenameRecording(ctx, req.ID, req.Name)

	case OpAction:
		var action model.Action
		if err := decode(cmd.Data, &action); err != nil {
			return nil, err
		}
		handled, err := s.bridge.HandleAction(action)
		if err != nil {
			return nil, err
		}
		return ActionResponse{Handled: handled}, nil

	case OpStats:
		stats, err := s.engine.RecordingStats(ctx)
		if err != nil {
			return nil, err
		}
		armed := s.armedSorted()
		ringing, _ := s.engine.Ringing()
		return StatsResponse{Recordings: *stats, Armed: armed, Ringing: ringing}, nil

	case OpPermissions:
		return s.engine.Permissions(), nil

	case OpMigrateStatus:
		status, err := s.prefs.MigrationStatus()
		if err != nil {
			return nil, err
		}
		return MigrateStatusResponse{Status: status}, nil

	default:
		return nil, fmt.Errorf("unknown op %q", cmd.Op)
	}
}

func (s *Server) armedSorted() []string {
	armed := s.engine.ArmedTriggers()
	sort.Strings(armed)
	return armed
}

func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return errors.New("missing command data")
	}
	return json.Unmarshal(raw, dst)
}

func okResponse(data any) Response {
	resp := Response{OK: true}
	if data == nil {
		return resp
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return errResponse(err)
	}
	resp.Data = raw
	return resp
}

func errResponse(err error) Response {
	return Response{Error: err.Error()}
}
