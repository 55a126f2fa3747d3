package services

// Quick-reply button labels. Transports render these as keyboards; the
// conversation recognises them case-insensitively in incoming text.
const (
	ButtonLetsGo            = "Let's go!"
	ButtonAbout             = "About me"
	ButtonStop              = "Stop"
	ButtonStopBot           = "Stop the bot"
	ButtonStartOver         = "Start over"
	ButtonFindByIngredients = "Find a recipe by the ingredients"
	ButtonFindByName        = "Find a recipe by the name of the dish"
	ButtonDone              = "I'm done!"
	ButtonCancelLast        = "Cancel the last"
	ButtonOneMore           = "One more recipe!"
	ButtonThanks            = "Nice, thanks!"
)

// Option rows offered per prompt, in display order.
var (
	startOptions = [][]string{
		{ButtonLetsGo, ButtonAbout},
		{ButtonStop},
	}

	choiceOptions = [][]string{
		{ButtonFindByIngredients},
		{ButtonFindByName},
		{ButtonStop, ButtonStartOver},
	}

	ingredientOptions = [][]string{
		{"Chicken", "Meat", "Fish", "Eggs"},
		{"Buckwheat", "Rice", "Cheese", "Potato"},
		{"Tomato", "Cucumber", "Zucchini", "Eggplant"},
		{ButtonStopBot, ButtonStartOver, ButtonDone, ButtonCancelLast},
	}

	dishOptions = [][]string{
		{"Lasagna", "Borscht", "Carbonara"},
		{"Burger", "Meatballs", "Greek salad"},
		{"Fried eggs", "Pilaf", "Ratatouille"},
		{"Spaghetti bolognese", "Oatmeal", "Fish and chips"},
		{ButtonStopBot, ButtonStartOver},
	}

	reactionOptions = [][]string{
		{ButtonOneMore},
		{ButtonThanks, ButtonStartOver},
	}
)

// Conversation copy.
const (
	msgGreeting = "Hi! I'm Gourmet Bot. Glad to meet you on my cooking platform! 🎉"

	msgChoice = "Before we start, let's make it clear: are you going to " +
		"find a recipe by the ingredients or by the name of the dish?\n" +
		"Please, select the appropriate button!"

	msgNamePrompt = "Great! Type the name of your dish or choose from the suggested 😊"

	msgIngredientPrompt = "Nice! Choose the ingredients you want to use or " +
		"type them separated by commas 😌"

	msgAbout = "Wow, you want to know more about me! " +
		"I'm Gourmet Bot, built for everyone tired of the constant search for delicious recipes. " +
		"If you want to cook something special or are just looking for inspiration, you're in the right place! 🍽️\n" +
		"I'm ready to help you find the right recipe for any occasion. Just tell me what you're interested in - " +
		"whether it's sweet or salty, meat or vegetable, a quick dinner or a holiday treat - " +
		"and we'll find the perfect recipe together!\nSo let our cooking adventure begin! 💌\n\n" +
		"You can simply type what you've got in a fridge and I'll find the dish with these ingredients " +
		"and tell you what else to buy. " +
		"But if you already know what to cook and are looking for a specific recipe, " +
		"type the name of the dish and I'll try to find the right one.\n\n" +
		"Come on, choose something and let's start cooking!"

	msgFarewell = "See you! Happy cooking! 😉"

	msgDownloading = "Downloading my database. It takes a while depending on the Internet connection"

	msgDatasetDown = "I couldn't reach my recipe database. Please try again in a moment!"

	msgScanAborted = "The search is taking too long. Please try again!"

	msgBrackets = "The request must not contain bracket characters!"

	msgOversized = "This recipe is too complicated for me. Use the Internet to learn about cooking it"

	msgWhatThink = "What do you think?"

	msgPickSomething = "Pick something!"

	msgNothingToRemove = "Nothing to remove! Pick something!"

	msgRemovedEmpty = "Removed the last ingredient. Nothing's chosen now!"
)

// Format strings taking the request description or counters.
const (
	msgLookingFmt      = "I'm looking for %q. It might take some time"
	msgHeaderFmt       = "The recipes that match %q:"
	msgNothingFoundFmt = "Unfortunately, nothing was found for %q." +
		" If you want to try again, select the appropriate option."
	msgNoMoreFmt = "That's everything I have for %q." +
		" If you want to search again, select the appropriate option."
	msgRemovedLeftFmt = "Removed the last ingredient. Here's what I've got: %s\nWant to choose anything else?"
	msgHaveSoFarFmt   = "Awesome! Here's what I already have: %s\nWant to choose anything else?"
)
