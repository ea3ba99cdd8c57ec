package update

import "github.com/sandeepkv93/tomatod/internal/views"

const quickStart = `# Quick start

Type a task and press enter:

    Write report #3 ==  ^project^

| Option | Meaning |
|---|---|
| ` + "`#N`" + ` | sessions planned, 1 to 5 |
| ` + "`==` `=-` `=.`" + ` | long session, short session, todo |
| ` + "`^title^`" + ` | parent task, matched by title prefix |
| ` + "`@+3` `@+2w` `@+1m` `@+1y`" + ` | show after an offset |
| ` + "`@15` `@5-15` `@5-15-22`" + ` | show on a date |
| ` + "`@mon`" + ` | show on the next Monday |
| ` + "`*w` `*m` `*y`" + ` | repeat weekly, monthly, yearly |
| ` + "`*mon` `*m12` `*y4-19`" + ` | repeat on a weekday, a day of month, a date |

Commands: ` + "`/start N`" + `, ` + "`/done N`" + `, ` + "`/todo text @date`" + `, ` + "`/check N`" + `, ` + "`/history [N]`" + `, ` + "`/schedules`" + `, ` + "`/unschedule N`" + `, ` + "`/reload`" + `, ` + "`/help`" + `.
`

func (m *Model) toggleHelp() {
	m.HelpVisible = !m.HelpVisible
	m.helpView.ShowAll = m.HelpVisible
	if m.HelpVisible && m.quickStart == "" {
		m.quickStart = views.RenderMarkdown(quickStart)
	}
}

func (m Model) renderHelpView() string {
	return views.RenderHelpPanel(views.HelpPanelData{
		QuickStart: m.quickStart,
		KeysView:   m.helpView.FullHelpView(m.keys.FullHelp()),
	})
}
