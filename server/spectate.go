package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/vi-replay/entity"
	"github.com/lixenwraith/vi-replay/logger"
	"github.com/lixenwraith/vi-replay/playback"
	"github.com/lixenwraith/vi-replay/timeline"
)

const writeWait = 10 * time.Second

var errUnknownOp = errors.New("unknown op")

func (s *Server) handleSpectate(w http.ResponseWriter, r *http.Request) {
	replayID := r.PathValue("id")
	path, err := s.resolve(replayID)
	if err != nil {
		replayError(w, err)
		return
	}

	res, err := playback.LoadSource(r.Context(), path, timeline.WithPalette(s.cfg.Palette))
	if err != nil {
		logger.Log.WithError(err).WithField("replay", replayID).Warn("spectate load failed")
		httpError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("replay", replayID).Warn("upgrade failed")
		return
	}

	sess := newSession(conn, res, s.cfg.Period)
	sess.log = sess.log.WithField("replay", replayID)
	sess.log.WithFields(logrus.Fields{
		"ticks":       res.Timeline.Len(),
		"diagnostics": len(res.Diagnostics),
	}).Info("spectator connected")
	sess.run()
}

// session owns one spectator's playback; only run touches ctrl and writes to conn
type session struct {
	id    uuid.UUID
	conn  *websocket.Conn
	ctrl  *playback.Controller
	clock *playback.Clock
	log   *logrus.Entry
	err   error
}

func newSession(conn *websocket.Conn, res *timeline.Result, period time.Duration) *session {
	ctrl := playback.NewController(nil, nil)
	ctrl.Replace(res)
	id := uuid.New()
	return &session{
		id:    id,
		conn:  conn,
		ctrl:  ctrl,
		clock: playback.NewClock(period),
		log:   logger.Log.WithField("session", id.String()),
	}
}

type inbound struct {
	cmd command
	err error
}

func (s *session) run() {
	defer s.conn.Close()
	defer s.clock.Stop()

	done := make(chan struct{})
	defer close(done)
	in := make(chan inbound)
	go s.readLoop(in, done)

	renderer := playback.RendererFunc(s.writeFrame)
	s.render(renderer)

	for s.err == nil {
		select {
		case <-s.clock.C():
			wasPlaying := s.ctrl.IsPlaying()
			s.ctrl.Tick(renderer)
			if wasPlaying && !s.ctrl.IsPlaying() {
				s.render(renderer)
			}
		case msg, ok := <-in:
			if !ok {
				s.log.Info("spectator disconnected")
				return
			}
			if msg.err == nil {
				msg.err = s.apply(msg.cmd)
			}
			if msg.err != nil {
				s.log.WithError(msg.err).Debug("rejected command")
				s.write(errorMessage{Type: TypeError, Message: msg.err.Error()})
				continue
			}
			s.render(renderer)
		}
	}
	s.log.WithError(s.err).Info("spectator write failed")
}

// readLoop forwards decoded commands until the connection fails
func (s *session) readLoop(in chan<- inbound, done <-chan struct{}) {
	defer close(in)
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(payload, &msg.cmd); err != nil {
			msg.err = fmt.Errorf("invalid command: %w", err)
		}
		select {
		case in <- msg:
		case <-done:
			return
		}
	}
}

func (s *session) apply(cmd command) error {
	switch cmd.Op {
	case "play":
		s.ctrl.Play()
	case "pause":
		s.ctrl.Pause()
	case "toggle":
		s.ctrl.Toggle()
	case "restart":
		s.ctrl.Restart()
	case "end":
		s.ctrl.End()
	case "seek", "step":
		if cmd.Tick == nil {
			return fmt.Errorf("%s requires tick", cmd.Op)
		}
		if cmd.Op == "seek" {
			s.ctrl.Seek(*cmd.Tick)
		} else {
			s.ctrl.Step(*cmd.Tick)
		}
	default:
		return fmt.Errorf("%w %q", errUnknownOp, cmd.Op)
	}
	s.log.WithFields(logrus.Fields{"op": cmd.Op, "tick": s.ctrl.Current()}).Debug("command")
	return nil
}

// render sends the current frame, or an empty one when the replay has no ticks
func (s *session) render(r playback.Renderer) {
	if s.ctrl.Len() == 0 {
		s.writeFrame(s.ctrl.Timeline().Dimensions(), nil, nil)
		return
	}
	s.ctrl.Render(r)
}

func (s *session) writeFrame(dims entity.Vec2, snap *timeline.Snapshot, colors *timeline.Colors) {
	s.write(newFrame(s.ctrl.Current(), s.ctrl.Len(), s.ctrl.State().String(), dims, snap, colors))
}

func (s *session) write(v any) {
	if s.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.err = err
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.err = s.conn.WriteMessage(websocket.TextMessage, data)
}
