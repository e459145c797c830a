// Package mini implements a lightweight, minimalist interface for library search and playback.
package mini

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/vidra-cli/vidra/icon"
	"github.com/vidra-cli/vidra/style"
	"github.com/vidra-cli/vidra/util"
)

// bind is a non-item menu action rendered alongside search results.
type bind struct {
	name string
}

func (b *bind) String() string {
	return style.Fg(style.Subtext)(b.name)
}

func (b *bind) eq(other *bind) bool {
	return b != nil && other != nil && b.name == other.name
}

var (
	quit   = &bind{"Quit"}
	next   = &bind{"Next"}
	prev   = &bind{"Previous"}
	replay = &bind{"Replay"}
	back   = &bind{"Back"}
	search = &bind{"Search"}
)

func title(s string) {
	fmt.Println(style.Title(s))
}

func fail(s string) {
	fmt.Println(style.Fg(style.Red)(icon.Get(icon.Fail) + " " + s))
}

func progress(msg string) (eraser func()) {
	return util.PrintErasable(style.Fg(style.Subtext)(icon.Get(icon.Progress) + " " + msg))
}

type input struct {
	value string
}

func getInput(validate func(string) bool) (*input, error) {
	prompt := survey.Input{
		Message: icon.Get(icon.Search),
	}

	var value string
	err := survey.AskOne(&prompt, &value, survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		if !validate(s) {
			return errors.New("invalid input")
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	return &input{value: value}, nil
}

// menu presents the items followed by the binds and returns either the chosen
// bind or the chosen item. The quit bind is always available.
func menu[T fmt.Stringer](items []T, binds ...*bind) (*bind, T, error) {
	var zero T

	if !lo.ContainsBy(binds, quit.eq) {
		binds = append(binds, quit)
	}

	options := lo.Map(items, func(item T, _ int) string {
		return item.String()
	})
	for _, b := range binds {
		options = append(options, b.String())
	}

	prompt := survey.Select{
		Message:  "Pick one",
		Options:  options,
		VimMode:  true,
		PageSize: 10,
	}

	var index int
	if err := survey.AskOne(&prompt, &index); err != nil {
		return nil, zero, err
	}

	if index < len(items) {
		return nil, items[index], nil
	}

	return binds[index-len(items)], zero, nil
}
