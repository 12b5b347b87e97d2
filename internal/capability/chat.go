package capability

import (
	"bufio"
	"context"
	"strings"
	"time"

	"tcprelay/config"
	ncerr "tcprelay/internal/errors"
	"tcprelay/internal/message"
	"tcprelay/internal/session"
	"tcprelay/util"
)

// Chat is the interactive relay client.  Lines typed on Stdin are sent
// as messages; frames broadcast by the relay are printed as they
// arrive.  Typing ExitWord (any case) leaves the chat.
type Chat struct {
	ExitWord   string
	Poll       time.Duration // receive poll interval
	BufferSize int
}

func (c *Chat) defaults() {
	if c.ExitWord == "" {
		c.ExitWord = config.DefaultExitWord
	}
	if c.Poll <= 0 {
		c.Poll = config.DefaultClientPoll
	}
	if c.BufferSize <= 0 {
		c.BufferSize = config.DefaultBufferSize
	}
}

// Handle runs the chat until the user types the exit word, Stdin ends,
// the relay goes away or ctx is cancelled.  The connection is shut
// down on return.
func (c *Chat) Handle(ctx context.Context, sess *session.Session) error {
	c.defaults()
	defer util.ShutdownConn(sess.Conn) //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recvDone := make(chan error, 1)
	go func() { recvDone <- c.receive(ctx, sess) }()

	lines := make(chan string)
	go c.readInput(ctx, sess, lines)

	if sess.Interactive {
		sess.Print("Connected to %s. Type '%s' to leave.\n", sess.Remote(), c.ExitWord)
	}
	sess.Prompt()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-recvDone:
			return err

		case line, ok := <-lines:
			if !ok {
				sess.Logger.Verbose("input closed, leaving")
				return nil
			}
			text := strings.TrimSpace(line)
			if strings.EqualFold(text, c.ExitWord) {
				sess.Logger.Verbose("exit word received, leaving")
				return nil
			}
			if text == "" {
				sess.Prompt()
				continue
			}
			if _, err := sess.Conn.Write([]byte(text)); err != nil {
				if ncerr.IsDisconnect(err) {
					sess.Logger.Info("connection to %s lost", sess.Remote())
					return nil
				}
				return ncerr.Wrap("write", sess.Remote(), err)
			}
			sess.Prompt()
		}
	}
}

// readInput forwards Stdin lines until EOF.  A blocked terminal read
// cannot be interrupted, so the goroutine may outlive Handle by one
// line; it never writes to the connection itself.
func (c *Chat) readInput(ctx context.Context, sess *session.Session, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(sess.Stdin)
	for sc.Scan() {
		select {
		case out <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		sess.Logger.Debug("reading input: %v", err)
	}
}

// receive prints every frame the relay sends.  It returns nil when the
// relay closes the connection or ctx ends.
func (c *Chat) receive(ctx context.Context, sess *session.Session) error {
	var frames message.Reassembler
	buf := make([]byte, c.BufferSize)

	for {
		if ctx.Err() != nil {
			return nil
		}
		sess.Conn.SetReadDeadline(time.Now().Add(c.Poll)) //nolint:errcheck

		n, err := sess.Conn.Read(buf)
		if n > 0 {
			frames.Write(buf[:n]) //nolint:errcheck
			for _, f := range frames.Frames() {
				c.show(sess, f)
			}
		}
		if err == nil {
			continue
		}
		if ncerr.IsTimeout(err) {
			continue
		}

		if rest := frames.Rest(); rest != "" {
			c.show(sess, rest)
		}
		if ctx.Err() != nil {
			return nil
		}
		if ncerr.IsDisconnect(err) {
			sess.Logger.Info("server closed the connection")
			return nil
		}
		return ncerr.Wrap("read", sess.Remote(), err)
	}
}

// show prints one frame.  On a terminal the current prompt line is
// overwritten and redrawn underneath.
func (c *Chat) show(sess *session.Session, frame string) {
	if sess.Interactive {
		sess.Print("\r%s\n> ", frame)
		return
	}
	sess.Print("%s\n", frame)
}
