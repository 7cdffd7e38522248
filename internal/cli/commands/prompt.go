package commands

import (
	"github.com/AlecAivazis/survey/v2"
)

// prompter asks the user questions; tests swap in a scripted one
type prompter interface {
	Confirm(message string, def bool) (bool, error)
	Input(message, def string) (string, error)
	Password(message string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	answer := def
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer)
	return answer, err
}

func (surveyPrompter) Input(message, def string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer, survey.WithValidator(survey.Required))
	return answer, err
}

func (surveyPrompter) Password(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Password{Message: message}, &answer, survey.WithValidator(survey.Required))
	return answer, err
}

var prompt prompter = surveyPrompter{}
