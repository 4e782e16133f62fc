package fakeapi

// Post mirrors a /posts resource.
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Comment mirrors a /comments resource.
type Comment struct {
	PostID int    `json:"postId"`
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

// Geo is the nested coordinate object of an address.
type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// Address is the nested address object of a user.
type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

// Company is the nested company object of a user.
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// User mirrors a /users resource.
type User struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company"`
}

func seedUsers() []User {
	return []User{
		{
			ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz",
			Address: Address{Street: "Kulas Light", Suite: "Apt. 556", City: "Gwenborough", Zipcode: "92998-3874",
				Geo: Geo{Lat: "-37.3159", Lng: "81.1496"}},
			Phone: "1-770-736-8031 x56442", Website: "hildegard.org",
			Company: Company{Name: "Romaguera-Crona", CatchPhrase: "Multi-layered client-server neural-net", BS: "harness real-time e-markets"},
		},
		{
			ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv",
			Address: Address{Street: "Victor Plains", Suite: "Suite 879", City: "Wisokyburgh", Zipcode: "90566-7771",
				Geo: Geo{Lat: "-43.9509", Lng: "-34.4618"}},
			Phone: "010-692-6593 x09125", Website: "anastasia.net",
			Company: Company{Name: "Deckow-Crist", CatchPhrase: "Proactive didactic contingency", BS: "synergize scalable supply-chains"},
		},
		{
			ID: 3, Name: "Clementine Bauch", Username: "Samantha", Email: "Nathan@yesenia.net",
			Address: Address{Street: "Douglas Extension", Suite: "Suite 847", City: "McKenziehaven", Zipcode: "59590-4157",
				Geo: Geo{Lat: "-68.6102", Lng: "-47.0653"}},
			Phone: "1-463-123-4447", Website: "ramiro.info",
			Company: Company{Name: "Romaguera-Jacobson", CatchPhrase: "Face to face bifurcated interface", BS: "e-enable strategic applications"},
		},
	}
}

func seedPosts() []Post {
	titles := []string{
		"sunt aut facere repellat provident",
		"qui est esse",
		"ea molestias quasi exercitationem",
		"eum et est occaecati",
		"nesciunt quas odio",
		"dolorem eum magni eos aperiam",
		"magnam facilis autem",
		"dolorem dolore est ipsam",
		"nesciunt iure omnis dolorem tempora",
		"optio molestias id quia eum",
	}
	posts := make([]Post, len(titles))
	for i, title := range titles {
		posts[i] = Post{
			UserID: i/4 + 1,
			ID:     i + 1,
			Title:  title,
			Body:   "quia et suscipit\nsuscipit recusandae consequuntur expedita",
		}
	}
	return posts
}

func seedComments() []Comment {
	return []Comment{
		{PostID: 1, ID: 1, Name: "id labore ex et quam laborum", Email: "Eliseo@gardner.biz", Body: "laudantium enim quasi est"},
		{PostID: 1, ID: 2, Name: "quo vero reiciendis velit", Email: "Jayne_Kuhic@sydney.com", Body: "est natus enim nihil"},
		{PostID: 1, ID: 3, Name: "odio adipisci rerum aut animi", Email: "Nikita@garfield.biz", Body: "quia molestiae reprehenderit"},
		{PostID: 2, ID: 4, Name: "alias odio sit", Email: "Lew@alysha.tv", Body: "non et atque occaecati"},
		{PostID: 2, ID: 5, Name: "vero eaque aliquid doloribus", Email: "Hayden@althea.biz", Body: "harum non quasi et ratione"},
		{PostID: 3, ID: 6, Name: "et fugit eligendi deleniti", Email: "Presley.Mueller@myrl.com", Body: "doloribus at sed quis culpa"},
	}
}
