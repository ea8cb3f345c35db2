// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package remote serves 6502 sessions to external test harnesses over TCP or
// WebSocket transports, using a compact binary command protocol.
//
// Every message starts with an opbyte. Commands from the client are answered
// with OP_ACK (plus any payload) or OP_FAIL. Words are big-endian.
package remote

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/ezrec/m65/cpu"
	"github.com/ezrec/m65/io"
)

// Opbyte is the first byte of every protocol message.
type Opbyte uint8

const (
	// 0x - Response type.
	OP_ACK  = Opbyte(0x00) // Acknowledged
	OP_FAIL = Opbyte(0x01) // Failed

	// 1x - Session control.
	OP_BYE       = Opbyte(0x10) // Close the connection
	OP_TRACE_ON  = Opbyte(0x11) // Trace Execution - Enable
	OP_TRACE_OFF = Opbyte(0x12) // Trace Execution - Disable
	OP_RESET     = Opbyte(0x13) // Reset the CPU and reload images
	OP_TICK      = Opbyte(0x1f) // Run the CPU for a tick

	// 2x - Registers.
	OP_WRITE_A  = Opbyte(0x20) // Accumulator write
	OP_READ_A   = Opbyte(0x21) // Accumulator read
	OP_WRITE_X  = Opbyte(0x22) // X Register write
	OP_READ_X   = Opbyte(0x23) // X Register read
	OP_WRITE_Y  = Opbyte(0x24) // Y Register write
	OP_READ_Y   = Opbyte(0x25) // Y Register read
	OP_WRITE_S  = Opbyte(0x26) // Stack pointer write
	OP_READ_S   = Opbyte(0x27) // Stack pointer read
	OP_WRITE_P  = Opbyte(0x28) // Status write
	OP_READ_P   = Opbyte(0x29) // Status read
	OP_WRITE_PC = Opbyte(0x2a) // PC write
	OP_READ_PC  = Opbyte(0x2b) // PC read

	// 3x - Memory.
	OP_WRITE_MEM = Opbyte(0x30) // Memory write: addr, len, bytes
	OP_READ_MEM  = Opbyte(0x31) // Memory read: addr, len

	// 8x - Events from the server.
	OP_EVENT_TRACE_EXEC = Opbyte(0x82) // Instruction about to execute
)

// Conn is a message transport to a peer.
type Conn interface {
	// ReadByte reads the next byte from the peer.
	ReadByte() (byte, error)
	// ReadFull fills buf from the peer.
	ReadFull(buf []byte) error
	// Send writes one complete message.
	Send(msg []byte) error
	// RemoteAddr names the peer.
	RemoteAddr() string
	// Close the transport.
	Close() error
}

// message is an outgoing message under construction.
type message []byte

func newMessage(op Opbyte) message {
	return message{uint8(op)}
}

func (msg message) appendB(value uint8) message {
	return append(msg, value)
}

func (msg message) appendW(value uint16) message {
	return binary.BigEndian.AppendUint16(msg, value)
}

// appendS appends a length prefixed string, truncated to 255 bytes.
func (msg message) appendS(str string) message {
	if len(str) > 0xff {
		str = str[:0xff]
	}
	return append(msg.appendB(uint8(len(str))), str...)
}

func readWord(conn Conn) (value uint16, err error) {
	var buf [2]byte
	err = conn.ReadFull(buf[:])
	if err != nil {
		return
	}
	value = binary.BigEndian.Uint16(buf[:])
	return
}

// expectAck reads an OP_ACK or OP_FAIL response.
func expectAck(conn Conn) (err error) {
	op, err := conn.ReadByte()
	if err != nil {
		return
	}

	switch Opbyte(op) {
	case OP_ACK:
		return nil
	case OP_FAIL:
		return ErrFail
	default:
		return ErrOpbyte(op)
	}
}

// Session is the server side of one client connection. Each session owns a
// separate Cpu.
type Session struct {
	Verbose bool     // If set, logs every command.
	Cpu     *cpu.Cpu // Session CPU.
	Trace   bool     // If set, OP_EVENT_TRACE_EXEC precedes every tick.

	Images []io.Image // Loaded on creation and on OP_RESET.

	conn   Conn
	logger *log.Logger
	closed bool
}

// NewSession creates a session for a connection, and loads its images.
func NewSession(conn Conn, quirks cpu.Quirks, images ...io.Image) (sess *Session) {
	sess = &Session{
		Cpu:    cpu.NewCpu(),
		Images: images,
		conn:   conn,
		logger: log.New(log.Writer(), fmt.Sprintf("[client/%s] ", conn.RemoteAddr()), log.Flags()),
	}
	sess.Cpu.Quirks = quirks
	sess.reset()

	return
}

func (sess *Session) reset() {
	sess.Cpu.Reset()
	for _, image := range sess.Images {
		io.LoadImage(sess.Cpu, image)
	}
}

// Serve commands until the client says goodbye, or the transport fails.
func (sess *Session) Serve() (err error) {
	for !sess.closed {
		err = sess.serveNext()
		if err != nil {
			sess.logger.Printf("Closing client connection due to an error: %v", err)
			break
		}
	}
	sess.logger.Printf("Closing client connection")
	sess.conn.Close()
	sess.logger.Printf("Closed client connection")

	return
}

func (sess *Session) logf(format string, args ...any) {
	if sess.Verbose {
		sess.logger.Printf(format, args...)
	}
}

// serveNext reads and answers a single command.
func (sess *Session) serveNext() (err error) {
	op, err := sess.conn.ReadByte()
	if err != nil {
		return
	}

	cp := sess.Cpu
	ack := newMessage(OP_ACK)

	// Register writes and reads.
	var reg8 *uint8
	switch Opbyte(op) {
	case OP_WRITE_A, OP_READ_A:
		reg8 = &cp.A
	case OP_WRITE_X, OP_READ_X:
		reg8 = &cp.X
	case OP_WRITE_Y, OP_READ_Y:
		reg8 = &cp.Y
	case OP_WRITE_S, OP_READ_S:
		reg8 = &cp.Sp
	}

	switch Opbyte(op) {
	case OP_BYE:
		sess.logf("Bye")
		sess.closed = true
		return
	case OP_TRACE_ON:
		sess.logf("TraceExecOn")
		sess.Trace = true
	case OP_TRACE_OFF:
		sess.logf("TraceExecOff")
		sess.Trace = false
	case OP_RESET:
		sess.logf("Reset")
		sess.reset()
	case OP_TICK:
		sess.logf("Tick")
		if sess.Trace {
			dec := cp.Decode()
			event := newMessage(OP_EVENT_TRACE_EXEC).appendW(dec.Pc).appendB(dec.Opcode).appendS(dec.String())
			err = sess.conn.Send(event)
			if err != nil {
				return
			}
			err = expectAck(sess.conn)
			if err != nil {
				return
			}
		}
		tick_err := cp.Tick()
		if tick_err != nil {
			sess.logf("Tick: %v", tick_err)
			return sess.conn.Send(newMessage(OP_FAIL))
		}
	case OP_WRITE_A, OP_WRITE_X, OP_WRITE_Y, OP_WRITE_S:
		*reg8, err = sess.conn.ReadByte()
		if err != nil {
			return
		}
		sess.logf("Write%02x %#x", op, *reg8)
	case OP_READ_A, OP_READ_X, OP_READ_Y, OP_READ_S:
		sess.logf("Read%02x", op)
		ack = ack.appendB(*reg8)
	case OP_WRITE_P:
		var value uint8
		value, err = sess.conn.ReadByte()
		if err != nil {
			return
		}
		sess.logf("WriteP %#x", value)
		cp.Status = cpu.Status(value) | cpu.STATUS_RESET
	case OP_READ_P:
		sess.logf("ReadP")
		ack = ack.appendB(uint8(cp.Status))
	case OP_WRITE_PC:
		cp.Pc, err = readWord(sess.conn)
		if err != nil {
			return
		}
		sess.logf("WritePc %#x", cp.Pc)
	case OP_READ_PC:
		sess.logf("ReadPc")
		ack = ack.appendW(cp.Pc)
	case OP_WRITE_MEM, OP_READ_MEM:
		var addr uint16
		var size uint8
		addr, err = readWord(sess.conn)
		if err != nil {
			return
		}
		size, err = sess.conn.ReadByte()
		if err != nil {
			return
		}
		if Opbyte(op) == OP_WRITE_MEM {
			data := make([]byte, size)
			err = sess.conn.ReadFull(data)
			if err != nil {
				return
			}
			sess.logf("WriteMem %#x %d", addr, size)
			for n, value := range data {
				cp.Write(addr+uint16(n), value)
			}
		} else {
			sess.logf("ReadMem %#x %d", addr, size)
			for n := range uint16(size) {
				ack = ack.appendB(cp.Read(addr + n))
			}
		}
	default:
		sess.logger.Printf("Unrecognized message type %x", op)
		return sess.conn.Send(newMessage(OP_FAIL))
	}

	return sess.conn.Send(ack)
}
