package sqlite

import (
	"github.com/fxamacker/cbor/v2"
)

// recordPayload is the CBOR-encoded part of a record row.
type recordPayload struct {
	Children []string `cbor:"1,keyasint"`
	Chain    []string `cbor:"2,keyasint"`
}

// encMode uses Core Deterministic Encoding so an unchanged record always
// produces identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sqlite: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("sqlite: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshalPayload(p recordPayload) ([]byte, error) {
	return encMode.Marshal(p)
}

func unmarshalPayload(data []byte, p *recordPayload) error {
	return decMode.Unmarshal(data, p)
}
