package zoomweb

import "meetbot/internal/browser"

// Selectors for the Zoom web client. Text-based xpaths are brittle against
// client updates; they are grouped here so a UI change is a one-file fix.
var (
	selInvalidLink = browser.XPath("//span[contains(text(), 'This meeting link is invalid (3,001)')]")
	selErrorBanner = browser.CSS(".error-message")

	selJoinAudio   = browser.XPath(`//button[@aria-label="Join Audio"]`)
	selAudioToggle = browser.XPath(`//button[@aria-label="Mute" or @aria-label="Unmute"]`)
	selVideoToggle = browser.XPath(`//button[@aria-label="Stop Video" or @aria-label="Start Video"]`)
	selPasscode    = browser.CSS("#input-for-pwd")
	selBotName     = browser.CSS("#input-for-name")
	selJoinButton  = browser.XPath(`//button[contains(text(), "Join")]`)

	selRemoved     = browser.XPath("//div[contains(text(), 'You have been removed')]")
	selLeftMeeting = browser.XPath("//div[contains(text(), 'Leave meeting')]")
	selEndedByHost = browser.XPath("//div[contains(text(), 'This meeting has been ended by host')]")
	selCallEnded   = browser.XPath("//span[contains(text(), 'The call ended because everyone left')]")

	selWaitingAdmit     = browser.XPath(`//span[contains(text(), "The host will admit you when they're ready")]`)
	selWaitingHostStart = browser.XPath(`//span[contains(text(), "Waiting for the host to start the meeting.")]`)
	selWaitingHostHere  = browser.XPath(`//span[contains(text(), "Host has joined. We've let them know you're here.")]`)

	selParticipants  = browser.XPath("//span[contains(text(), 'Participants')]")
	selJoinDenied    = browser.XPath(`//div[contains(text(), "You can't join this call")]`)
	selUnmuteRequest = browser.XPath("//div[contains(text(), 'The host would like you to unmute')]")
	selMuteButton    = browser.XPath("//button[contains(text(), 'Mute')]")
	selAttendeeCount = browser.XPath(`//span[@class="footer-button__number-counter"]`)
)

// deniedByPlatformText appears inside the generic error banner when the join
// request is rejected at the platform level rather than by the host.
const deniedByPlatformText = "denied your request to join"
