package serialrx

import "errors"

var ErrUnknownProtocol = errors.New("serialrx: unknown protocol")
