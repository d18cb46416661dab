package preprocessing_test

import (
	"fmt"

	"github.com/ezoic/cart/preprocessing"
)

// ExampleLabelEncoder encodes an outcome column and maps codes back
func ExampleLabelEncoder() {
	enc := preprocessing.NewLabelEncoder()
	codes, err := enc.FitTransform([]string{"tested_negative", "tested_positive", "tested_negative"})
	if err != nil {
		return
	}
	fmt.Printf("Classes: %v\n", enc.Classes())
	fmt.Printf("Codes: %v\n", codes)

	labels, err := enc.InverseTransform([]float64{1, 0})
	if err != nil {
		return
	}
	fmt.Printf("Labels: %v\n", labels)

	// Output: Classes: [tested_negative tested_positive]
	// Codes: [0 1 0]
	// Labels: [tested_positive tested_negative]
}
