package wire

// StartupParameter is one (key, value) pair of a StartupMessage. A slice
// rather than a map keeps wire order deterministic, matching how the server
// sees it and how a frame-capture test asserts against it.
type StartupParameter struct {
	Name  string
	Value string
}

// StartupMessage is the one frame with no type byte: protocol version
// followed by a sequence of (key, value) C-string pairs and a trailing NUL.
// Parameters supplies at minimum "user" and usually "database".
type StartupMessage struct {
	Parameters []StartupParameter
}

func (*StartupMessage) frontend() {}

func (m *StartupMessage) Encode(dst []byte) []byte {
	b := NewStartupMessage(dst).Uint32(ProtocolVersion)
	for _, p := range m.Parameters {
		b.CString(p.Name).CString(p.Value)
	}
	b.Byte(0)
	return b.Finish()
}

// PasswordMessage carries either a cleartext password or, in the MD5 case,
// the "md5"-prefixed hex digest computed by the caller — this package never
// touches the password bytes itself.
type PasswordMessage struct {
	Password string
}

func (*PasswordMessage) frontend() {}

func (m *PasswordMessage) Encode(dst []byte) []byte {
	return NewMessage(dst, 'p').CString(m.Password).Finish()
}

// Terminate asks the server to close the connection cleanly.
type Terminate struct{}

func (*Terminate) frontend()                  {}
func (m *Terminate) Encode(dst []byte) []byte { return NewMessage(dst, 'X').Finish() }
