package hid

import "time"

// MockDevice is a scriptable in-memory Device for tests.
//
// Responses are consumed front to back, one per ReadReport. When Respond is
// set it takes precedence and computes the reply from the most recent write,
// which lets a test model device firmware instead of canned bytes.
type MockDevice struct {
	DeviceInfo DeviceInfo

	Writes    [][]byte
	Responses [][]byte
	Respond   func(written []byte) []byte

	// Silent makes every ReadReport time out, modelling a device that
	// never answers.
	Silent bool

	WriteErr error
	ReadErr  error
	Closed   bool
}

func (m *MockDevice) WriteReport(data []byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.Writes = append(m.Writes, cp)
	return nil
}

func (m *MockDevice) ReadReport(timeout time.Duration) ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if m.Silent {
		return nil, ErrReadTimeout
	}
	if m.Respond != nil {
		if len(m.Writes) == 0 {
			return nil, ErrReadTimeout
		}
		return m.Respond(m.Writes[len(m.Writes)-1]), nil
	}
	if len(m.Responses) == 0 {
		return nil, ErrReadTimeout
	}
	r := m.Responses[0]
	m.Responses = m.Responses[1:]
	return r, nil
}

func (m *MockDevice) Info() DeviceInfo { return m.DeviceInfo }

func (m *MockDevice) Close() error {
	m.Closed = true
	return nil
}

// MockManager is an in-memory Manager serving a fixed device list.
type MockManager struct {
	Devices []DeviceInfo
	ListErr error

	// OpenFunc, when set, overrides the default behavior of returning a
	// fresh MockDevice for the opened descriptor.
	OpenFunc func(info DeviceInfo) (Device, error)
}

func (m *MockManager) List() ([]DeviceInfo, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]DeviceInfo(nil), m.Devices...), nil
}

func (m *MockManager) Open(info DeviceInfo) (Device, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(info)
	}
	return &MockDevice{DeviceInfo: info}, nil
}
