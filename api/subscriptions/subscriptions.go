// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/bastionstake/bastion/api/utils"
	"github.com/bastionstake/bastion/bastion"
	"github.com/bastionstake/bastion/journal"
	"github.com/bastionstake/bastion/log"
	"github.com/bastionstake/bastion/vault"
)

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

var logger = log.WithContext("pkg", "subscriptions")

// Subscriptions streams journaled ledger events over websocket. A
// subscriber names a position (sequence cursor) to resume from and
// receives every later event matching its filter, live ones included.
type Subscriptions struct {
	backtraceLimit uint64
	journal        *journal.Journal
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
}

// New creates the subscription endpoint. backtraceLimit caps how far
// behind the journal head a position may start; zero means unlimited.
func New(j *journal.Journal, allowedOrigins []string, backtraceLimit uint64) *Subscriptions {
	return &Subscriptions{
		backtraceLimit: backtraceLimit,
		journal:        j,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	position, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	filter, err := parseFilter(req.URL.Query())
	if err != nil {
		return utils.BadRequest(err)
	}

	conn, closed, err := s.setupConn(w, req)
	if err != nil {
		// the upgrader has already replied
		logger.Debug("failed to upgrade websocket", "err", err)
		return nil
	}
	metricActiveWebsocketCount().AddWithLabel(1, map[string]string{"subject": "events"})
	defer metricActiveWebsocketCount().AddWithLabel(-1, map[string]string{"subject": "events"})

	reader := newRecordReader(s.journal, position, filter)
	err = s.pipe(req.Context(), conn, reader, closed)
	if err != nil {
		logger.Debug("subscription ended", "err", err)
	}
	s.closeConn(conn, err)
	return nil
}

// setupConn upgrades to websocket and starts the read loop that
// detects client hangups.
func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		conn.SetReadLimit(100 * 1024)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(closed)
				return
			}
		}
	}()
	return conn, closed, nil
}

// pipe drains the reader to the connection until the client hangs up,
// the server shuts down, or a write fails.
func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader *recordReader, closed chan struct{}) error {
	ticker := s.journal.NewTicker()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		msgs, hasMore, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}

		if hasMore {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.done:
				return nil
			case <-closed:
				return nil
			default:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.done:
				return nil
			case <-closed:
				return nil
			case <-ticker.C():
			case <-pingTicker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return err
				}
			}
		}
	}
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		logger.Debug("failed to write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("failed to close websocket", "err", err)
	}
}

// parsePosition resolves the pos query arg to the sequence cursor to
// resume from. Empty means the current journal head.
func (s *Subscriptions) parsePosition(posStr string) (uint64, error) {
	maxSeq := s.journal.MaxSequence()
	if posStr == "" {
		return maxSeq, nil
	}
	pos, err := strconv.ParseUint(posStr, 10, 64)
	if err != nil {
		return 0, err
	}
	if pos > maxSeq {
		return 0, errors.New("sequence doesn't exist")
	}
	if s.backtraceLimit > 0 && maxSeq-pos > s.backtraceLimit {
		return 0, errors.New("backtrace limit exceeded")
	}
	return pos, nil
}

func parseFilter(query url.Values) (*recordFilter, error) {
	var filter recordFilter
	if accStr := query.Get("account"); accStr != "" {
		acc, err := bastion.ParseAddress(accStr)
		if err != nil {
			return nil, errors.WithMessage(err, "account")
		}
		filter.account = &acc
	}
	if kindStr := query.Get("kind"); kindStr != "" {
		kind, ok := vault.ParseEventKind(kindStr)
		if !ok {
			return nil, errors.Errorf("kind: unknown kind %q", kindStr)
		}
		filter.kind = &kind
	}
	return &filter, nil
}

// Close breaks all active subscriptions and waits for them to wind
// down.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
