package recommend

import "cinematch/models"

// fallbackMovies is returned whenever the completion service cannot produce a
// valid answer. The list is fixed so a degraded session still shows five
// fully-populated, well-known picks.
var fallbackMovies = []models.Movie{
	{
		Name:             "The Shawshank Redemption",
		SmallDescription: "Hope and friendship behind prison walls",
		Genre:            "Drama",
		BigDescription:   "A banker wrongly convicted of murder finds hope and redemption through friendship with a fellow inmate in this timeless tale of human resilience.",
		Synopsis:         "Andy Dufresne is sentenced to life in Shawshank State Penitentiary for the murders of his wife and her lover, despite maintaining his innocence. Over the years, he befriends fellow inmate Ellis 'Red' Redding and becomes instrumental in money laundering operations. Andy's quiet strength and unwavering hope inspire his fellow inmates, and he slowly earns the respect of inmates and guards alike. His friendship with Red deepens over the decades, and Andy's determination to maintain his dignity and hope ultimately leads to an extraordinary conclusion.",
	},
	{
		Name:             "Inception",
		SmallDescription: "Dreams within dreams in a mind-bending heist",
		Genre:            "Sci-Fi",
		BigDescription:   "A thief who enters people's dreams to steal secrets is given the inverse task of planting an idea in this complex, layered thriller.",
		Synopsis:         "Dom Cobb is a skilled thief who specializes in extraction - entering people's dreams to steal their deepest secrets. His rare ability has made him a coveted player in corporate espionage but has also cost him everything he loves. Cobb gets a chance at redemption when he's offered an impossible task: inception, planting an idea rather than stealing one. If successful, it could be the perfect crime, but a dangerous enemy anticipates their every move. The team must navigate multiple layers of dreams, where reality becomes increasingly uncertain.",
	},
	{
		Name:             "Parasite",
		SmallDescription: "Dark comedy about class warfare and deception",
		Genre:            "Thriller",
		BigDescription:   "A poor family schemes to infiltrate a wealthy household, leading to unexpected consequences in this Oscar-winning masterpiece.",
		Synopsis:         "The Kim family lives in a semi-basement apartment, struggling to make ends meet. When the son Ki-woo gets an opportunity to tutor the daughter of the wealthy Park family, he sees a chance for the entire family to escape poverty. One by one, the Kims infiltrate the Park household by posing as unrelated, highly qualified workers. However, their carefully constructed deception begins to unravel when they discover the house's previous housekeeper has been hiding a dark secret in the basement. What starts as a darkly comic tale of class aspiration escalates into a shocking thriller about inequality and desperation.",
	},
	{
		Name:             "Mad Max: Fury Road",
		SmallDescription: "High-octane chase through post-apocalyptic wasteland",
		Genre:            "Action",
		BigDescription:   "In a post-apocalyptic world, a woman rebels against a tyrannical ruler in search of her homeland with the aid of a group of female prisoners.",
		Synopsis:         "In a stark desert landscape where humanity is broken, two rebels on the run might be able to restore order. Max Rockatansky, a man of action and few words, seeks peace of mind following the loss of his wife and child. Imperator Furiosa, a woman of action, is trying to make it back to her childhood homeland. She's stolen the Five Wives from the Citadel of the warlord Immortan Joe, who rules the wasteland through control of water. Joe sends his army in pursuit, leading to an extended chase across the desert in heavily armed vehicles.",
	},
	{
		Name:             "Spirited Away",
		SmallDescription: "Magical adventure in a world of spirits and wonder",
		Genre:            "Animation",
		BigDescription:   "A young girl enters a magical world ruled by spirits and witches, where she must work to save her parents and find her way home.",
		Synopsis:         "Ten-year-old Chihiro and her parents stumble upon a seemingly abandoned amusement park while moving to their new home. After her parents are transformed into pigs by the witch Yubaba, Chihiro must work at Yubaba's bathhouse for spirits to free them and find a way back to the human world. With the help of the mysterious Haku and other spirits she befriends, Chihiro learns about courage, friendship, and identity. She must navigate the complex rules of the spirit world while maintaining her humanity and discovering her own inner strength.",
	},
}

// FallbackMovies returns a copy of the degraded-mode recommendation list.
func FallbackMovies() []models.Movie {
	out := make([]models.Movie, len(fallbackMovies))
	copy(out, fallbackMovies)
	return out
}
