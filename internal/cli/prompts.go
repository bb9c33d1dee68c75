package cli

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/CortexChat/internal/persona"
)

// prompter collects user input for the chat loop.
type prompter interface {
	Input(message string) (string, error)
	// SelectPersonas returns ids or display names of the chosen personas.
	SelectPersonas(options []persona.Persona) ([]string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message string) (string, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Help:    "Type a question, a /command, or exit to leave",
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

func (surveyPrompter) SelectPersonas(options []persona.Persona) ([]string, error) {
	names := make([]string, len(options))
	for i, p := range options {
		names[i] = p.DisplayName
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Which personas should answer?",
		Options: names,
		Help:    "Use space to select, enter to confirm. Selecting none skips this question for now.",
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, err
	}
	return selected, nil
}
