package tokenizer

import (
	"fmt"
	"reflect"
	"testing"
)

func TestLowerPreservesRuneCount(t *testing.T) {
	tests := []string{"iPhone 15 ลดราคา", "MACBOOK Air", "ÀÉÎ", ""}
	for _, input := range tests {
		got := Lower(input)
		if len([]rune(got)) != len([]rune(input)) {
			t.Errorf("Lower(%q) changed rune count: %q", input, got)
		}
	}
	if Lower("iPhone") != "iphone" {
		t.Errorf("Lower(iPhone) = %q", Lower("iPhone"))
	}
}

func TestWords(t *testing.T) {
	got := Words("  ผ่อน 0%   iPhone\t16 ")
	want := []string{"ผ่อน", "0%", "iPhone", "16"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestIndexes(t *testing.T) {
	tests := []struct {
		haystack string
		needle   string
		want     []int
	}{
		{"iphone iphone", "iphone", []int{0, 7}},
		{"aaaa", "aa", []int{0, 1, 2}},
		{"ลดราคา iphone", "iphone", []int{7}},
		{"short", "longer needle", nil},
		{"anything", "", nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.haystack, tt.needle), func(t *testing.T) {
			got := Indexes([]rune(tt.haystack), []rune(tt.needle))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Indexes(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
			}
		})
	}
}

func TestContainsWholeWord(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want bool
	}{
		{"word at start", "iPhone 15 ลดราคา", "iphone", true},
		{"word at end", "ลดราคา iPhone", "iphone", true},
		{"only occurrence", "iPhone", "iphone", true},
		{"punctuation boundary", "(iPhone)", "iphone", true},
		{"prefix of a longer word", "iPhones on sale", "iphone", false},
		{"suffix of a longer word", "superiphone", "iphone", false},
		{"glued to digits", "iphone15", "iphone", false},
		{"second occurrence is whole", "iphonex and iphone", "iphone", true},
		{"thai glued to thai", "โปรไอโฟนลดราคา", "ไอโฟน", false},
		{"thai separated by spaces", "โปร ไอโฟน ลดราคา", "ไอโฟน", true},
		{"missing", "Samsung", "iphone", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsWholeWord(tt.text, tt.term); got != tt.want {
				t.Errorf("ContainsWholeWord(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.want)
			}
		})
	}
}

func TestUniqueWords(t *testing.T) {
	got := UniqueWords("iPhone 15 ลดราคา IPHONE ผ่อน ab", 2, 0)
	want := []string{"iphone", "ลดราคา", "ผ่อน"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueWords() = %v, want %v", got, want)
	}

	capped := UniqueWords("one two three four five", 2, 2)
	if !reflect.DeepEqual(capped, []string{"one", "two"}) {
		t.Errorf("UniqueWords() with limit = %v", capped)
	}

	if empty := UniqueWords("", 2, 0); len(empty) != 0 || empty == nil {
		t.Errorf("UniqueWords(\"\") = %#v, want empty non-nil slice", empty)
	}
}
