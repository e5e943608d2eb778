package wire

// ParseComplete, BindComplete, and CloseComplete carry no data; the server
// sends them purely as pipeline acknowledgements in the extended protocol
// and this core treats them as advisory (it does not fail the query if the
// body is unexpectedly non-empty — it just ignores the extra bytes).

type ParseComplete struct{}

func (*ParseComplete) backend()                     {}
func (m *ParseComplete) Encode(dst []byte) []byte   { return NewMessage(dst, '1').Finish() }
func decodeParseComplete([]byte) (BackendMessage, error) { return &ParseComplete{}, nil }

type BindComplete struct{}

func (*BindComplete) backend()                     {}
func (m *BindComplete) Encode(dst []byte) []byte  { return NewMessage(dst, '2').Finish() }
func decodeBindComplete([]byte) (BackendMessage, error) { return &BindComplete{}, nil }

type CloseComplete struct{}

func (*CloseComplete) backend()                    {}
func (m *CloseComplete) Encode(dst []byte) []byte { return NewMessage(dst, '3').Finish() }
func decodeCloseComplete([]byte) (BackendMessage, error) { return &CloseComplete{}, nil }

// EmptyQueryResponse replaces RowDescription/CommandComplete when the
// simple query protocol is sent an empty (whitespace-only) query string.
type EmptyQueryResponse struct{}

func (*EmptyQueryResponse) backend()                    {}
func (m *EmptyQueryResponse) Encode(dst []byte) []byte { return NewMessage(dst, 'I').Finish() }
func decodeEmptyQueryResponse([]byte) (BackendMessage, error) { return &EmptyQueryResponse{}, nil }
