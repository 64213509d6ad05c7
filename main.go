package main

import (
	"github.com/KatelynHaworth/mse-swapper/internal/cmd"
)

func main() {
	cmd.Execute()
}
