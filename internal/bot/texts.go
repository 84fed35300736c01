package bot

// User-facing copy.
const (
	msgNoTestsYet       = "You have no tests yet. Press the button or send /start to take one!"
	msgPickWindow       = "📊 Pick a window:"
	msgAdminMenu        = "🔧 Admin menu"
	msgEditPrompt       = "Send the new response template. It must contain " + Placeholder + "."
	msgTemplateUpdated  = "✅ Template updated."
	msgTemplateRejected = "❌ The template must contain " + Placeholder + ". Nothing was changed."
	msgEditCancelled    = "Edit cancelled."
	msgNothingToCancel  = "Nothing to cancel."
	msgAccessDenied     = "⛔ This action is available to the administrator only."
	msgFailure          = "Something went wrong, please try again later."
	msgUnknownText      = "Send /start to take the test."

	btnRetry       = "🔁 Try again"
	btnMyStats     = "📈 My stats"
	btnGlobalStats = "📊 Global stats"
	btnEditText    = "✏️ Edit template"
	btnFullStats   = "📊 Full stats"
	btnCancel      = "Cancel"

	inlineTitle = "🌈 Take the test"
)
