package wire

// Transaction status bytes carried by ReadyForQuery.
const (
	TxStatusIdle     byte = 'I'
	TxStatusInTx     byte = 'T'
	TxStatusInFailed byte = 'E'
)

// ReadyForQuery signals the server is idle and awaiting the next request.
type ReadyForQuery struct {
	TxStatus byte
}

func (*ReadyForQuery) backend() {}

func (m *ReadyForQuery) Encode(dst []byte) []byte {
	return NewMessage(dst, 'Z').Byte(m.TxStatus).Finish()
}

func decodeReadyForQuery(body []byte) (BackendMessage, error) {
	if len(body) != 1 {
		return nil, &invalidMessageLenErr{messageType: "ReadyForQuery", expectedLen: 1, actualLen: len(body)}
	}
	return &ReadyForQuery{TxStatus: body[0]}, nil
}
