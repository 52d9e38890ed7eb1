// Package sh provides an interactive console to drive the bridge by hand.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/newbridge/pkg/bridge"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *bridge.Config
	Bridge *bridge.Bridge
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&HandshakeCmd,
		&DrainCmd,
		&SendCmd,
		&InterruptCmd,
		&KillCmd,
		&ReadCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell for the bridge.
func New(conf *bridge.Config, b *bridge.Bridge) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Bridge: b,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func (s *Shell) setOpen(open bool) {
	if open {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", s.Config.Device))
	} else {
		s.Shell.SetPrompt(closedPrompt)
	}
}

// FormatResult prints a handshake Result for display.
func FormatResult(res bridge.Result) string {
	var w strings.Builder
	fmt.Fprintf(&w, "%s: rounds=%d matched=%d", res.Status(), res.Rounds, res.MatchedRounds)
	if res.LastPrompt != "" {
		fmt.Fprintf(&w, " prompt=%q", res.LastPrompt)
	}
	fmt.Fprintf(&w, " drained=%d overflows=%d elapsed=%v", res.Drained, res.Overflows, res.Elapsed)
	return w.String()
}

func (s *Shell) printResult(c *ishell.Context, res bridge.Result) {
	if s.OutputJSON {
		out, err := json.Marshal(&res)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(FormatResult(res))
}

func (s *Shell) send(c *ishell.Context, data []byte) {
	if _, err := s.Bridge.Write(data); err != nil {
		c.Err(err)
		return
	}
	if err := s.Bridge.Flush(); err != nil {
		c.Err(err)
	}
}

// readAvailable consumes everything currently received.
func (s *Shell) readAvailable() []byte {
	var out []byte
	for s.Bridge.Available() > 0 {
		b, err := s.Bridge.ReadByte()
		if err != nil {
			break
		}
		out = append(out, b)
	}
	return out
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Bridge.End()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens the serial port without a handshake.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[BAUD]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			baud := s.Config.Baud
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("Invalid BAUD: %v", err))
					return
				}
				baud = val
			}
			if err := s.Bridge.Port().Begin(baud); err != nil {
				c.Err(err)
				return
			}
			s.setOpen(true)
		},
	}

	// CloseCmd closes the serial port.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"end"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if err := s.Bridge.End(); err != nil {
				c.Err(err)
			}
			s.setOpen(false)
		},
	}

	// HandshakeCmd runs the full handshake.
	HandshakeCmd = ishell.Cmd{
		Name:    "handshake",
		Aliases: []string{"begin", "hs"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.Interactive {
				c.Println("Handshaking with", s.Config.Device, "...")
			}
			res, err := s.Bridge.Begin(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			s.setOpen(true)
			s.printResult(c, res)
		},
	}

	// DrainCmd discards peer output until it goes quiet.
	DrainCmd = ishell.Cmd{
		Name: "drain",
		Help: "[QUIET(e.g. 1s)]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			quiet := s.Config.Timing.Quiet
			if len(c.Args) > 0 {
				val, err := time.ParseDuration(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("Invalid QUIET: %v", err))
					return
				}
				quiet = val
			}
			n, err := bridge.Drain(context.Background(), s.Bridge, bridge.SystemClock, quiet)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("drained %d bytes\n", n)
		},
	}

	// SendCmd sends a line to the peer.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			ShellFrom(c).send(c, []byte(strings.Join(c.Args, " ")+"\n"))
		},
	}

	// InterruptCmd sends CtrlC.
	InterruptCmd = ishell.Cmd{
		Name:    "ctrlc",
		Aliases: []string{"intr"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).send(c, []byte{bridge.CtrlC})
		},
	}

	// KillCmd sends the sequence terminating a running bridge on the peer.
	KillCmd = ishell.Cmd{
		Name: "kill",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).send(c, append(append([]byte(nil), bridge.KillSequence...), '\n'))
		},
	}

	// ReadCmd prints received bytes.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			out := s.readAvailable()
			if s.OutputJSON {
				data, _ := json.Marshal(string(out))
				c.Println(string(data))
				return
			}
			c.Print(string(out))
			if len(out) > 0 && out[len(out)-1] != '\n' {
				c.Println()
			}
		},
	}

	// StatusCmd prints the bridge status.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			res, ok := s.Bridge.LastResult()
			if !ok {
				c.Println("No handshake completed")
				return
			}
			c.Printf("connected=%v pending=%d\n", s.Bridge.Connected(), s.Bridge.Available())
			s.printResult(c, res)
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := bridge.NewConfig()
	New(conf, conf.NewBridge(conf.NewDevice())).Run(flag.Args()...)
}
