package wire

// ParameterStatus reports a single runtime parameter the server considers
// worth telling the client about (server_version, TimeZone, etc.).
type ParameterStatus struct {
	Name  string
	Value string
}

func (*ParameterStatus) backend() {}

func (m *ParameterStatus) Encode(dst []byte) []byte {
	return NewMessage(dst, 'S').CString(m.Name).CString(m.Value).Finish()
}

func decodeParameterStatus(body []byte) (BackendMessage, error) {
	body, name, ok := splitCString(body)
	if !ok {
		return nil, &invalidMessageFormatErr{messageType: "ParameterStatus", details: "missing name terminator"}
	}
	_, value, ok := splitCString(body)
	if !ok {
		return nil, &invalidMessageFormatErr{messageType: "ParameterStatus", details: "missing value terminator"}
	}
	return &ParameterStatus{Name: name, Value: value}, nil
}
