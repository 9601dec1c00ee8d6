package detection

import "testing"

// TestKindString tests the string form of each backend kind
func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindAuto, "auto"},
		{KindYOLO, "yolo"},
		{KindYuNet, "yunet"},
		{KindHaar, "haar"},
		{Kind(42), "kind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

// TestParseKind tests parsing of backend names
func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{"empty defaults to auto", "", KindAuto, false},
		{"auto", "auto", KindAuto, false},
		{"yolo", "yolo", KindYOLO, false},
		{"yunet", "yunet", KindYuNet, false},
		{"haar", "haar", KindHaar, false},
		{"haarcascade alias", "haarcascade", KindHaar, false},
		{"mixed case", "YuNet", KindYuNet, false},
		{"surrounding space", "  yolo ", KindYOLO, false},
		{"unknown", "dlib", KindAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
