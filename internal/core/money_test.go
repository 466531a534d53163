package core

import "testing"

func TestParseEntry(t *testing.T) {
	cases := []struct {
		in     string
		amount int64
		desc   string
		ok     bool
	}{
		{"15000 Lunch", 15000, "Lunch", true},
		{"  15000   Makan siang  ", 15000, "Makan siang", true},
		{"1 ok", 1, "ok", true},
		{"abc Lunch", 0, "", false},
		{"0 Lunch", 0, "", false},
		{"-5 Lunch", 0, "", false},
		{"15.000 Lunch", 0, "", false},
		{"15000abc Lunch", 0, "", false},
		{"15000 a", 0, "", false},
		{"15000", 0, "", false},
		{"", 0, "", false},
	}
	for _, tc := range cases {
		amount, desc, err := ParseEntry(tc.in)
		if tc.ok {
			if err != nil || amount != tc.amount || desc != tc.desc {
				t.Fatalf("%q expected (%d, %q), got (%d, %q, %v)", tc.in, tc.amount, tc.desc, amount, desc, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := map[int64]string{
		0:       "Rp0",
		500:     "Rp500",
		15000:   "Rp15.000",
		1234567: "Rp1.234.567",
		-20000:  "-Rp20.000",
	}
	for in, want := range cases {
		if got := FormatRupiah(in); got != want {
			t.Fatalf("FormatRupiah(%d) = %q, want %q", in, got, want)
		}
	}
}
