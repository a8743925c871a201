// Package decodemock holds a hand-maintained stand-in for the mockgen
// output the rest of the pack commits alongside its mocked interfaces (see
// aligator-GoFAT's NewMockfatFileFs pattern). It mocks decode.Decoder so
// fatfs tests can force a decode failure without constructing a name that
// actually breaks UTF-16LE decoding.
//
// Source: github.com/scafiti/fatsort/internal/decode (Decoder)
package decodemock

import (
	"reflect"

	"github.com/golang/mock/gomock"
)

// MockDecoder mocks decode.Decoder.
type MockDecoder struct {
	ctrl     *gomock.Controller
	recorder *MockDecoderMockRecorder
}

// MockDecoderMockRecorder is the mock recorder for MockDecoder.
type MockDecoderMockRecorder struct {
	mock *MockDecoder
}

// NewMockDecoder creates a new mock instance.
func NewMockDecoder(ctrl *gomock.Controller) *MockDecoder {
	mock := &MockDecoder{ctrl: ctrl}
	mock.recorder = &MockDecoderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDecoder) EXPECT() *MockDecoderMockRecorder {
	return m.recorder
}

// DecodeUTF16LE mocks base method.
func (m *MockDecoder) DecodeUTF16LE(b []byte) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DecodeUTF16LE", b)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DecodeUTF16LE indicates an expected call of DecodeUTF16LE.
func (mr *MockDecoderMockRecorder) DecodeUTF16LE(b interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DecodeUTF16LE", reflect.TypeOf((*MockDecoder)(nil).DecodeUTF16LE), b)
}
