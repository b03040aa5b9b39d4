package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/tog-lang/tog/lang"
	"github.com/tog-lang/tog/parser"
)

const continuationPrompt = "...> "

// session evaluates REPL input against one evaluator so definitions and
// variables accumulate across entries.
type session struct {
	ev          *lang.Evaluator
	out, errOut io.Writer
}

// submit parses src and, when it is complete, evaluates it. It reports
// false when more input is needed.
func (s *session) submit(src string, atEOF bool) bool {
	prog, err := parser.Parse(src)
	if err != nil {
		if parser.IsIncomplete(err) && !atEOF {
			return false
		}
		fmt.Fprintf(s.errOut, "parse error: %v\n", err)
		return true
	}
	val, err := s.ev.Exec(prog)
	if err != nil {
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return true
	}
	if val.Type != lang.TypeUnit {
		fmt.Fprintln(s.out, val.String())
	}
	return true
}

func (s *session) runBuffered(reader *bufio.Reader) {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(s.errOut, "read error: %v\n", err)
			return
		}
		atEOF := err != nil
		buffer.WriteString(line)
		if strings.TrimSpace(buffer.String()) == "" {
			buffer.Reset()
			if atEOF {
				return
			}
			continue
		}
		if s.submit(buffer.String(), atEOF) {
			buffer.Reset()
		}
		if atEOF {
			return
		}
	}
}

func (s *session) runInteractive(prompt, historyPath string) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	var buffer strings.Builder

	for {
		p := prompt
		if buffer.Len() > 0 {
			p = continuationPrompt
		}
		input, err := state.Prompt(p)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(s.out)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(s.out)
				return
			default:
				fmt.Fprintf(s.errOut, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		if strings.TrimSpace(src) == "" {
			buffer.Reset()
			continue
		}
		if !s.submit(src, false) {
			continue
		}
		buffer.Reset()
		state.AppendHistory(strings.TrimSpace(src))
	}
}
