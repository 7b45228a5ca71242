// Package midiin reads note-on messages from a MIDI input port.
package midiin

import (
	"errors"
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/verte-zerg/tuiano/internal/theory"
)

var ErrNoPorts = errors.New("no MIDI input ports found")

// NoteEvent is a key pressed on a MIDI keyboard.
type NoteEvent struct {
	Note     string
	Octave   int
	MIDI     int
	Velocity int
}

// Listener delivers note events until closed.
type Listener struct {
	port drivers.In
	stop func()
}

// Ports lists the input port names.
func Ports() ([]string, error) {
	ins := gomidi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// Open listens on the port whose name contains name, or the first port when
// name is empty. onErr, if set, receives listener errors such as a
// disconnected device.
func Open(name string, onNote func(NoteEvent), onErr func(error)) (*Listener, error) {
	port, err := findPort(gomidi.GetInPorts(), name)
	if err != nil {
		return nil, err
	}
	opts := []gomidi.ListenOption{}
	if onErr != nil {
		opts = append(opts, gomidi.HandleError(onErr))
	}
	stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, _ int32) {
		if ev, ok := Decode(msg); ok {
			onNote(ev)
		}
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %q: %w", port.String(), err)
	}
	return &Listener{port: port, stop: stop}, nil
}

// Port returns the name of the port being read.
func (l *Listener) Port() string {
	return l.port.String()
}

func (l *Listener) Close() error {
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
	return nil
}

// Decode turns a note-on with non-zero velocity into a NoteEvent.
func Decode(msg gomidi.Message) (NoteEvent, bool) {
	var channel, key, velocity uint8
	if !msg.GetNoteOn(&channel, &key, &velocity) || velocity == 0 {
		return NoteEvent{}, false
	}
	note, octave := theory.NoteFromMIDI(int(key))
	return NoteEvent{
		Note:     note,
		Octave:   octave,
		MIDI:     int(key),
		Velocity: int(velocity),
	}, true
}

func findPort(ins []drivers.In, name string) (drivers.In, error) {
	if len(ins) == 0 {
		return nil, ErrNoPorts
	}
	if name == "" {
		return ins[0], nil
	}
	want := strings.ToLower(name)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), want) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("MIDI input %q not found", name)
}

// CloseDriver releases the MIDI driver. Call once on exit.
func CloseDriver() {
	gomidi.CloseDriver()
}
