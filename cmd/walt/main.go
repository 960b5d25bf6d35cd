// cmd/walt/main.go
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/acgtun/walt/internal/app"
)

func main() {
	var out, errBuf bytes.Buffer
	code := app.RunWalt(os.Args[1:], &out, &errBuf)

	if out.Len() > 0 {
		fmt.Print(out.String())
	}
	if errBuf.Len() > 0 {
		fmt.Fprint(os.Stderr, errBuf.String())
	}
	os.Exit(code)
}
