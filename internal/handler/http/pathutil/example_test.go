package pathutil_test

import (
	"fmt"

	"guacamaya/internal/handler/http/pathutil"
)

// Every article id or slug maps to the same label.
func ExampleNormalizePath() {
	fmt.Println(pathutil.NormalizePath("/articles/0b9c7f5e-4a52-4f3e-9a56-3f1f4a0d2c11"))
	fmt.Println(pathutil.NormalizePath("/articles/operativo-salud-comunal-san-antonio"))
	fmt.Println(pathutil.NormalizePath("/articles/refresh"))

	// Output:
	// /articles/:idOrSlug
	// /articles/:idOrSlug
	// /articles/refresh
}
