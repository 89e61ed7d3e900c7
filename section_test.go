package mffs

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
)

var sectionTestErr = errors.New("injected i/o failure")

func TestFs_readSectorAt(t *testing.T) {
	tests := []struct {
		name       string
		sector     SectorNum
		sections   []FlashSection
		mockResult int
		mockErr    error
		wantErr    error
	}{
		{
			name:   "out of range sector",
			sector: 5,
			sections: []FlashSection{
				{Count: 2, SectorSize: 64},
			},
			wantErr: ErrInvalidSectorNumber,
		},
		{
			name:   "capability returns error",
			sector: 0,
			sections: []FlashSection{
				{Count: 2, SectorSize: 64},
			},
			mockErr: sectionTestErr,
			wantErr: sectionTestErr,
		},
		{
			name:   "happy path",
			sector: 1,
			sections: []FlashSection{
				{Count: 2, SectorSize: 64},
			},
			mockResult: 8,
			wantErr:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			mockIO := NewMockSectionIO(mockCtrl)

			if tt.wantErr != ErrInvalidSectorNumber {
				mockIO.EXPECT().
					ReadSector(gomock.Any(), gomock.Any(), gomock.Any()).
					MaxTimes(1).
					Return(tt.mockResult, tt.mockErr)
			}

			for i := range tt.sections {
				tt.sections[i].IO = mockIO
			}
			fs := New(tt.sections)

			err := fs.readSectorAt(tt.sector, 0, make([]byte, 8))
			mockCtrl.Finish()

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("readSectorAt() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
