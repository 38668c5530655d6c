package iotransport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/gnames/gnfmt"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/message"
)

const maxLineSize = 16 * 1024 * 1024

// envelope is the wire form of a message: one JSON object per line.
type envelope struct {
	Header string          `json:"header"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Stream is a message.Channel over a byte stream pair. Outgoing messages
// are queued, so TrySend does not wait for the writer.
type Stream struct {
	enc  gnfmt.GNjson
	in   chan message.Message
	out  chan message.Message
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	log  *slog.Logger
}

var _ message.Channel = (*Stream)(nil)

// NewStream starts reading messages from r and writing queued messages
// to w. The queue keeps up to capacity messages.
func NewStream(r io.Reader, w io.Writer, capacity int, log *slog.Logger) *Stream {
	if log == nil {
		log = slog.Default()
	}
	if capacity < 1 {
		capacity = 1
	}
	res := &Stream{
		in:   make(chan message.Message),
		out:  make(chan message.Message, capacity),
		done: make(chan struct{}),
		log:  log,
	}
	go res.read(r)
	res.wg.Add(1)
	go res.write(w)
	return res
}

func (s *Stream) Send(ctx context.Context, msg message.Message) error {
	select {
	case <-s.done:
		return message.ErrClosed
	default:
	}

	select {
	case s.out <- msg:
		return nil
	case <-s.done:
		return message.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Stream) TrySend(msg message.Message) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.out <- msg:
		return true
	default:
		return false
	}
}

// Receive returns message.ErrClosed after the input stream ended or the
// stream was closed.
func (s *Stream) Receive(ctx context.Context) (message.Message, error) {
	select {
	case msg, ok := <-s.in:
		if !ok {
			return nil, message.ErrClosed
		}
		return msg, nil
	case <-s.done:
		return nil, message.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the stream after writing the queued messages.
func (s *Stream) Close() error {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	return nil
}

func (s *Stream) read(r io.Reader) {
	defer close(s.in)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		msg := s.decode(line)
		select {
		case s.in <- msg:
		case <-s.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.log.Warn("Cannot read message stream", "error", err)
	}
}

func (s *Stream) write(w io.Writer) {
	defer s.wg.Done()
	bw := bufio.NewWriter(w)

	put := func(msg message.Message) bool {
		line, err := s.encode(msg)
		if err != nil {
			s.log.Warn("Cannot encode message", "kind", msg.Kind().String(), "error", err)
			return true
		}
		if _, err = bw.Write(append(line, '\n')); err == nil {
			err = bw.Flush()
		}
		if err != nil {
			s.log.Warn("Cannot write message stream", "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case msg := <-s.out:
			if !put(msg) {
				return
			}
		case <-s.done:
			for {
				select {
				case msg := <-s.out:
					if !put(msg) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *Stream) encode(msg message.Message) ([]byte, error) {
	env := envelope{Header: msg.Kind().String()}
	if u, ok := msg.(message.Unrecognized); ok {
		env.Header = u.Header
	} else {
		data, err := s.enc.Encode(msg)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return s.enc.Encode(env)
}

func (s *Stream) decode(line []byte) message.Message {
	var env envelope
	if err := s.enc.Decode(line, &env); err != nil {
		s.log.Warn("Cannot decode message", "error", err)
		return message.Unrecognized{}
	}

	var msg message.Message
	var err error
	switch message.KindFromHeader(env.Header) {
	case message.KindInit:
		msg, err = decodeInit(s.enc, env.Data)
	case message.KindLoad:
		msg = message.Load{}
	case message.KindExecute:
		msg = message.Execute{}
	case message.KindStop:
		msg = message.Stop{}
	case message.KindEmpty:
		msg = message.Empty{}
	case message.KindSearchProgress:
		msg, err = decodeData[message.SearchProgress](s.enc, env.Data)
	case message.KindExecuteCompleted:
		msg, err = decodeData[message.ExecuteCompleted](s.enc, env.Data)
	default:
		return message.Unrecognized{Header: env.Header}
	}
	if err != nil {
		s.log.Warn("Cannot decode message data", "header", env.Header, "error", err)
		return message.Unrecognized{Header: env.Header}
	}
	return msg
}

func decodeData[T message.Message](enc gnfmt.GNjson, data []byte) (T, error) {
	var res T
	if len(data) == 0 {
		return res, nil
	}
	err := enc.Decode(data, &res)
	return res, err
}

// decodeInit keeps default values for configuration keys the sender
// omitted.
func decodeInit(enc gnfmt.GNjson, data []byte) (message.Init, error) {
	res := message.Init{Config: config.New()}
	if len(data) == 0 {
		return res, nil
	}
	err := enc.Decode(data, &res)
	return res, err
}
