package wire

import "github.com/jackc/pgio"

// BackendKeyData carries the process id and secret key needed to build a
// future CancelRequest. This core records them but does not expose a cancel
// operation (see spec §5 — no in-band cancellation).
type BackendKeyData struct {
	ProcessID int32
	SecretKey int32
}

func (*BackendKeyData) backend() {}

func (m *BackendKeyData) Encode(dst []byte) []byte {
	return NewMessage(dst, 'K').Int32(m.ProcessID).Int32(m.SecretKey).Finish()
}

func decodeBackendKeyData(body []byte) (BackendMessage, error) {
	if len(body) != 8 {
		return nil, &invalidMessageLenErr{messageType: "BackendKeyData", expectedLen: 8, actualLen: len(body)}
	}
	body, pid := pgio.NextInt32(body)
	_, secret := pgio.NextInt32(body)
	return &BackendKeyData{ProcessID: pid, SecretKey: secret}, nil
}
