package mffs

// Hand-written mock of the section.go interfaces Reader, Writer and Eraser.

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
)

// MockSectionIO is a mock of the SectionIO interface, hand-maintained in
// the shape mockgen would produce for Reader/Writer/Eraser combined.
type MockSectionIO struct {
	ctrl     *gomock.Controller
	recorder *MockSectionIORecorder
}

type MockSectionIORecorder struct {
	mock *MockSectionIO
}

func NewMockSectionIO(ctrl *gomock.Controller) *MockSectionIO {
	mock := &MockSectionIO{ctrl: ctrl}
	mock.recorder = &MockSectionIORecorder{mock}
	return mock
}

func (m *MockSectionIO) EXPECT() *MockSectionIORecorder {
	return m.recorder
}

func (m *MockSectionIO) ReadSector(relSector uint32, offset uint32, buf []byte) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadSector", relSector, offset, buf)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockSectionIORecorder) ReadSector(relSector, offset, buf interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadSector", reflect.TypeOf((*MockSectionIO)(nil).ReadSector), relSector, offset, buf)
}

func (m *MockSectionIO) WriteSector(relSector uint32, offset uint32, buf []byte) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteSector", relSector, offset, buf)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockSectionIORecorder) WriteSector(relSector, offset, buf interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteSector", reflect.TypeOf((*MockSectionIO)(nil).WriteSector), relSector, offset, buf)
}

func (m *MockSectionIO) EraseSector(relSector uint32) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EraseSector", relSector)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSectionIORecorder) EraseSector(relSector interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EraseSector", reflect.TypeOf((*MockSectionIO)(nil).EraseSector), relSector)
}
