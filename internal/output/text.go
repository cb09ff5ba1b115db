package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/codewatch/internal/constants"
	"github.com/spiffcs/codewatch/internal/format"
	"github.com/spiffcs/codewatch/internal/model"
	"golang.org/x/term"
)

// TextFormatter formats output for humans
type TextFormatter struct {
	// Width is the terminal width commit lines are fitted to.
	Width int
	// Links turns names into OSC 8 hyperlinks.
	Links bool
	Now   func() time.Time
}

// NewTextFormatter sizes the formatter to stdout.
func NewTextFormatter() *TextFormatter {
	f := &TextFormatter{
		Width: constants.DefaultTerminalWidth,
		Now:   time.Now,
	}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		f.Links = true
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			f.Width = w
		}
	}
	return f
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func (f *TextFormatter) hyperlink(text, url string) string {
	if !f.Links || url == "" {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Format writes each result, separated by a blank line
func (f *TextFormatter) Format(results []Result, w io.Writer) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		switch {
		case r.Err != nil:
			f.failure(w, r.Subject, r.Err)
		case r.User != nil:
			f.user(w, r.User)
		case r.Repo != nil:
			f.repo(w, r.Repo)
		case r.Search != nil:
			f.search(w, r.Search)
		}
	}
	return nil
}

func (f *TextFormatter) user(w io.Writer, u *model.UserInfo) {
	title := color.New(color.Bold).Sprint(u.Login)
	if u.Name != "" && u.Name != u.Login {
		title += " " + color.New(color.FgHiBlack).Sprintf("(%s)", u.Name)
	}
	fmt.Fprintln(w, f.hyperlink(title, u.HTMLURL))

	if u.Bio != "" {
		fmt.Fprintf(w, "  %s\n", format.FirstLine(u.Bio))
	}

	var details []string
	for _, d := range []struct{ label, value string }{
		{"Company", u.Company},
		{"Location", u.Location},
		{"Blog", u.Blog},
		{"Email", u.Email},
	} {
		if d.value != "" {
			details = append(details, fmt.Sprintf("%s: %s", d.label, d.value))
		}
	}
	if len(details) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(details, "  "))
	}

	fmt.Fprintf(w, "  %s repos  %s followers  %s following",
		format.Count(u.PublicRepos), format.Count(u.Followers), format.Count(u.Following))
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  joined %s", u.CreatedAt.Format("Jan 2006"))
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) repo(w io.Writer, r *model.Repo) {
	info := r.Info
	name := info.FullName
	if name == "" {
		name = info.Owner + "/" + info.Name
	}

	line := f.hyperlink(color.New(color.Bold).Sprint(name), info.HTMLURL)
	line += fmt.Sprintf("  %s %s  %s %s", color.YellowString("★"), format.Count(info.Stars),
		color.CyanString("⑂"), format.Count(info.Forks))
	if info.Language != "" {
		line += "  " + info.Language
	}
	var tags []string
	if info.Private {
		tags = append(tags, "private")
	}
	if info.Fork {
		tags = append(tags, "fork")
	}
	if len(tags) > 0 {
		line += "  " + color.New(color.FgHiBlack).Sprintf("[%s]", strings.Join(tags, ", "))
	}
	fmt.Fprintln(w, line)

	if info.Description != "" {
		fmt.Fprintf(w, "  %s\n", info.Description)
	}

	if len(r.Commits) == 0 {
		fmt.Fprintln(w, color.New(color.FgHiBlack).Sprint("  No commits"))
		return
	}

	// Author and age columns are fixed; the subject takes the rest
	const (
		colSHA    = 7
		colAuthor = 16
		colAge    = 4
		gaps      = 2 + 2 + 2 + 2
	)
	colSubject := f.Width - colSHA - colAuthor - colAge - gaps
	if colSubject < 10 {
		colSubject = 10
	}

	now := f.Now()
	for _, c := range r.Commits {
		subject, subjectWidth := format.TruncateToWidth(c.Subject(), colSubject)

		author := c.AuthorLogin
		if author == "" {
			author = c.AuthorName
		}
		author, authorWidth := format.TruncateToWidth(author, colAuthor)

		fmt.Fprintf(w, "  %s  %s  %s  %s\n",
			f.hyperlink(color.YellowString(c.ShortSHA()), c.HTMLURL),
			format.PadRight(subject, subjectWidth, colSubject),
			format.PadRight(author, authorWidth, colAuthor),
			color.New(color.FgHiBlack).Sprint(format.Age(c.Timestamp, now)),
		)
	}
}

func (f *TextFormatter) search(w io.Writer, s *model.SearchResults) {
	summary := fmt.Sprintf("%s users, %s repos", format.Count(s.TotalUsers), format.Count(s.TotalRepos))
	if s.Incomplete {
		summary += ", incomplete"
	}
	fmt.Fprintf(w, "%s  %s\n", color.New(color.Bold).Sprintf("Search %q", s.Query),
		color.New(color.FgHiBlack).Sprint(summary))

	if s.Empty() {
		fmt.Fprintln(w, color.New(color.FgHiBlack).Sprint("  No matches"))
		return
	}

	if len(s.Users) > 0 {
		fmt.Fprintln(w, "  Users")
		for _, u := range s.Users {
			fmt.Fprintf(w, "    %s\n", f.hyperlink(u.Login, u.HTMLURL))
		}
	}

	if len(s.Repos) > 0 {
		fmt.Fprintln(w, "  Repositories")
		for _, r := range s.Repos {
			name := r.FullName
			if name == "" {
				name = r.Owner + "/" + r.Name
			}
			line := fmt.Sprintf("    %s  %s %s", f.hyperlink(name, r.HTMLURL),
				color.YellowString("★"), format.Count(r.Stars))
			if r.Language != "" {
				line += "  " + r.Language
			}
			if r.Description != "" {
				// Whatever width the name and counts leave over
				room := f.Width - format.DisplayWidth(name) - len(format.Count(r.Stars)) - len(r.Language) - 12
				if room >= 10 {
					desc, _ := format.TruncateToWidth(format.FirstLine(r.Description), room)
					line += "  " + color.New(color.FgHiBlack).Sprint(desc)
				}
			}
			fmt.Fprintln(w, line)
		}
	}
}

func (f *TextFormatter) failure(w io.Writer, subject string, err error) {
	msg := err.Error()
	var modelErr *model.Error
	if !errors.As(err, &modelErr) || modelErr.Subject == "" {
		msg = subject + ": " + msg
	}
	fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), msg)
	if model.KindOf(err) == model.KindAuthenticationFailed {
		fmt.Fprintln(w, "  Run `codewatch login` or set GITHUB_TOKEN.")
	}
}
