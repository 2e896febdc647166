package websocket

import (
	"github.com/OCAP2/simvis/pkg/core"
)

// sessionLog is what a reconnect must resend so the server can rebuild
// the running session: the start message, the latest descriptor of every
// entity and the last frame of each.
type sessionLog struct {
	name   string
	start  []byte
	order  []core.ObjectID
	entity map[core.ObjectID][]byte
	frame  map[core.ObjectID][]byte
}

func newSessionLog(name string, start []byte) *sessionLog {
	return &sessionLog{
		name:   name,
		start:  start,
		entity: make(map[core.ObjectID][]byte),
		frame:  make(map[core.ObjectID][]byte),
	}
}

func (s *sessionLog) recordEntity(id core.ObjectID, data []byte) {
	if _, ok := s.entity[id]; !ok {
		s.order = append(s.order, id)
	}
	s.entity[id] = data
}

// recordFrame keeps the frame only for described entities; the server
// drops frames of entities it has not seen.
func (s *sessionLog) recordFrame(id core.ObjectID, data []byte) {
	if _, ok := s.entity[id]; ok {
		s.frame[id] = data
	}
}

// replay returns the messages to resend, in the order the server needs
// them.
func (s *sessionLog) replay() [][]byte {
	out := make([][]byte, 0, 1+2*len(s.order))
	out = append(out, s.start)
	for _, id := range s.order {
		out = append(out, s.entity[id])
	}
	for _, id := range s.order {
		if f, ok := s.frame[id]; ok {
			out = append(out, f)
		}
	}
	return out
}
