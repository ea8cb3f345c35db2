package remote

import (
	"bufio"
	"io"
	"net"

	"github.com/gorilla/websocket"
)

// TCPConn is a Conn over a stream connection.
type TCPConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

var _ Conn = (*TCPConn)(nil)

// NewTCPConn wraps a stream connection.
func NewTCPConn(conn net.Conn) *TCPConn {
	return &TCPConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (conn *TCPConn) ReadByte() (byte, error) {
	return conn.reader.ReadByte()
}

func (conn *TCPConn) ReadFull(buf []byte) (err error) {
	_, err = io.ReadFull(conn.reader, buf)
	return
}

func (conn *TCPConn) Send(msg []byte) (err error) {
	_, err = conn.conn.Write(msg)
	return
}

func (conn *TCPConn) RemoteAddr() string {
	return conn.conn.RemoteAddr().String()
}

func (conn *TCPConn) Close() error {
	return conn.conn.Close()
}

// WSConn is a Conn over a WebSocket. Each Send is one binary message;
// received messages are concatenated into a byte stream.
type WSConn struct {
	conn   *websocket.Conn
	msgBuf []uint8
}

var _ Conn = (*WSConn)(nil)

// NewWSConn wraps a WebSocket connection.
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

func (conn *WSConn) recvMsg() error {
	tp, msg, err := conn.conn.ReadMessage()
	if err != nil {
		return err
	}
	if tp != websocket.BinaryMessage {
		return ErrMessageType
	}
	conn.msgBuf = append(conn.msgBuf, msg...)
	return nil
}

func (conn *WSConn) ReadByte() (value byte, err error) {
	for len(conn.msgBuf) < 1 {
		err = conn.recvMsg()
		if err != nil {
			return
		}
	}
	value = conn.msgBuf[0]
	conn.msgBuf = conn.msgBuf[1:]
	return
}

func (conn *WSConn) ReadFull(buf []byte) (err error) {
	for len(conn.msgBuf) < len(buf) {
		err = conn.recvMsg()
		if err != nil {
			return
		}
	}
	copy(buf, conn.msgBuf)
	conn.msgBuf = conn.msgBuf[len(buf):]
	return
}

func (conn *WSConn) Send(msg []byte) error {
	return conn.conn.WriteMessage(websocket.BinaryMessage, msg)
}

func (conn *WSConn) RemoteAddr() string {
	return conn.conn.RemoteAddr().String()
}

func (conn *WSConn) Close() error {
	return conn.conn.Close()
}
