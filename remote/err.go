package remote

import (
	"errors"

	"github.com/ezrec/m65/translate"
)

var f = translate.From

var (
	ErrFail        = errors.New(f("peer answered FAIL"))
	ErrMessageType = errors.New(f("expected binary message"))
)

// ErrOpbyte reports an unexpected opbyte from the peer.
type ErrOpbyte uint8

func (err ErrOpbyte) Error() string {
	return f("unexpected opbyte 0x%02x", uint8(err))
}
