package main

import (
	"context"

	"mealplan-backend/cmd/mealplan-cli/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
