package remote

// Client drives a remote Session.
type Client struct {
	conn Conn

	// OnTrace, if set, receives OP_EVENT_TRACE_EXEC events.
	OnTrace func(pc uint16, opcode uint8, disasm string)
}

// NewClient creates a client on a connection.
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// call sends a command and waits for its acknowledgement, answering any
// trace events in between.
func (cl *Client) call(msg message) (err error) {
	err = cl.conn.Send(msg)
	if err != nil {
		return
	}

	for {
		var op uint8
		op, err = cl.conn.ReadByte()
		if err != nil {
			return
		}

		switch Opbyte(op) {
		case OP_ACK:
			return nil
		case OP_FAIL:
			return ErrFail
		case OP_EVENT_TRACE_EXEC:
			err = cl.traceEvent()
			if err != nil {
				return
			}
		default:
			return ErrOpbyte(op)
		}
	}
}

func (cl *Client) traceEvent() (err error) {
	pc, err := readWord(cl.conn)
	if err != nil {
		return
	}
	opcode, err := cl.conn.ReadByte()
	if err != nil {
		return
	}
	size, err := cl.conn.ReadByte()
	if err != nil {
		return
	}
	disasm := make([]byte, size)
	err = cl.conn.ReadFull(disasm)
	if err != nil {
		return
	}

	if cl.OnTrace != nil {
		cl.OnTrace(pc, opcode, string(disasm))
	}

	return cl.conn.Send(newMessage(OP_ACK))
}

// Bye closes the session.
func (cl *Client) Bye() error {
	return cl.conn.Send(newMessage(OP_BYE))
}

// Trace enables or disables execution trace events.
func (cl *Client) Trace(enable bool) error {
	if enable {
		return cl.call(newMessage(OP_TRACE_ON))
	}
	return cl.call(newMessage(OP_TRACE_OFF))
}

// Reset the remote CPU.
func (cl *Client) Reset() error {
	return cl.call(newMessage(OP_RESET))
}

// Tick executes one instruction. An undefined opcode returns ErrFail.
func (cl *Client) Tick() error {
	return cl.call(newMessage(OP_TICK))
}

// WriteRegister writes an 8-bit register with one of the OP_WRITE_* opbytes.
func (cl *Client) WriteRegister(op Opbyte, value uint8) error {
	return cl.call(newMessage(op).appendB(value))
}

// ReadRegister reads an 8-bit register with one of the OP_READ_* opbytes.
func (cl *Client) ReadRegister(op Opbyte) (value uint8, err error) {
	err = cl.call(newMessage(op))
	if err != nil {
		return
	}
	value, err = cl.conn.ReadByte()
	return
}

// WritePc sets the program counter.
func (cl *Client) WritePc(pc uint16) error {
	return cl.call(newMessage(OP_WRITE_PC).appendW(pc))
}

// ReadPc returns the program counter.
func (cl *Client) ReadPc() (pc uint16, err error) {
	err = cl.call(newMessage(OP_READ_PC))
	if err != nil {
		return
	}
	pc, err = readWord(cl.conn)
	return
}

// WriteMemory stores up to 255 bytes at addr.
func (cl *Client) WriteMemory(addr uint16, data []byte) error {
	if len(data) > 0xff {
		data = data[:0xff]
	}
	msg := newMessage(OP_WRITE_MEM).appendW(addr).appendB(uint8(len(data)))
	return cl.call(append(msg, data...))
}

// ReadMemory reads size bytes at addr.
func (cl *Client) ReadMemory(addr uint16, size uint8) (data []byte, err error) {
	err = cl.call(newMessage(OP_READ_MEM).appendW(addr).appendB(size))
	if err != nil {
		return
	}
	data = make([]byte, size)
	err = cl.conn.ReadFull(data)
	return
}
