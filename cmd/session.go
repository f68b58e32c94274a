package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

var yesAnswers = []string{"yes", "yeah", "y"}

// runSession repeats the interactive session until a book link was printed
// or input runs out.
func (a *app) runSession(ctx context.Context) error {
	for {
		fmt.Fprint(a.out, "\n\n\n")
		ok, err := a.session(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			slog.Error("Session failed", "err", err)
			fmt.Fprintln(a.out, "Something went wrong, please try again")
			fmt.Fprintln(a.out, "Make sure to update the program, and that you are connected to the internet")
			continue
		}
		if ok {
			return nil
		}
	}
}

func (a *app) session(ctx context.Context) (bool, error) {
	update, err := a.ask("Do you want to update the database?")
	if err != nil {
		return false, err
	}
	if update {
		fmt.Fprintln(a.out, "Alright, then please stay patient, this can take a while...")
		if err := a.rebuild(ctx); err != nil {
			return false, err
		}
		fmt.Fprint(a.out, "Update finished!\n\n\n\n")
	}

	if last := a.index.LastSelection(); last != "" {
		fmt.Fprintf(a.out, "\nLast time, you read %q\n", last)
		resume, err := a.ask("Do you want to continue reading?")
		if err != nil {
			return false, err
		}
		if resume {
			fmt.Fprintf(a.out, "You will now start reading %s. Have fun!\n", last)
			a.openBook(ctx, last)
			return true, nil
		}
	}

	fmt.Fprintln(a.out, "\nPlease enter the name of a book you want to read:")
	query, err := a.prompt("Book Title: ")
	if err != nil {
		return false, err
	}
	fmt.Fprintln(a.out, "\nAlright, currently searching through the library, please wait...")

	titles := a.index.RankTitles(query, a.limit(0))
	if len(titles) == 0 {
		fmt.Fprintln(a.out, "The library is empty. Please update it first.")
		return false, nil
	}

	fmt.Fprintln(a.out, "\nFound following book titles based on your search. Choose one:")
	for i, t := range titles {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, t)
	}
	answer, err := a.prompt("Please select the books ID: ")
	if err != nil {
		return false, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(titles) {
		fmt.Fprintln(a.out, "Error. That ID is not valid.")
		return false, nil
	}
	title := titles[n-1]

	fmt.Fprintf(a.out, "You will now start reading %s. Have fun!\n", title)
	a.selectBook(title)
	if !a.openBook(ctx, title) {
		fmt.Fprintln(a.out, "There seems to be a problem. Make sure you are connected to the internet.")
		return false, nil
	}
	return true, nil
}

// ask poses a yes/no question. Anything but an affirmative answer is a no.
func (a *app) ask(question string) (bool, error) {
	answer, err := a.prompt(question + " [y/n]\n")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	for _, y := range yesAnswers {
		if answer == y {
			return true, nil
		}
	}
	return false, nil
}

// prompt prints text and reads one trimmed line. io.EOF is returned only
// when the input ends without any text.
func (a *app) prompt(text string) (string, error) {
	fmt.Fprint(a.out, text)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
