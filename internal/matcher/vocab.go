package matcher

// skillVocabulary 软技能/服务类关键词，重复项会被重复计分，保持与既有评分一致。
var skillVocabulary = []string{
	"communication",
	"харилцаа",
	"харилцааны соёл",
	"teamwork",
	"багаар ажиллах",
	"хамтран ажиллах",
	"responsible",
	"хариуцлагатай",
	"хариуцлага",
	"clean",
	"цэвэр",
	"цэвэрч",
	"fast",
	"түргэн",
	"шуурхай",
	"friendly",
	"найрсаг",
	"эелдэг",
	"polite",
	"эелдэг",
	"соёлтой",
	"organized",
	"нямбай",
	"зохион байгуулалт",
	"efficient",
	"шуурхай",
	"үр дүнтэй",
	"customer service",
	"үйлчилгээ",
	"үйлчлэгч",
	"service",
	"үйлчилгээ",
	"үйлчлэл",
	"cashier",
	"касс",
	"кассир",
	"sales",
	"борлуулалт",
	"зар",
	"retail",
	"жижиглэн",
	"худалдаа",
}

// noExperienceMarkers 出现任一即视为不要求工作经验。
var noExperienceMarkers = []string{
	"туршлага шаардахгүй",
	"no experience required",
	"сургалт хийнэ",
}

// Category 职位类别词表。
type Category struct {
	Name     string
	Titles   []string
	Keywords []string
}

// categories 按优先级排列，得分相同时靠前者胜出。
var categories = []Category{
	{
		Name: "marketing",
		Titles: []string{
			"marketing manager", "маркетингийн менежер",
			"digital marketing manager", "дижитал маркетингийн менежер",
			"marketing specialist", "маркетингийн мэргэжилтэн",
			"marketing coordinator", "маркетингийн зохицуулагч",
		},
		Keywords: []string{
			"marketing", "маркетинг",
			"digital marketing", "дижитал маркетинг",
			"brand marketing", "брэнд маркетинг",
			"marketing strategy", "маркетингийн стратеги",
		},
	},
	{
		Name: "design",
		Titles: []string{
			"designer", "дизайнер",
			"senior designer", "ахлах дизайнер",
			"graphic designer", "график дизайнер",
			"ui designer", "ui дизайнер",
			"ux designer", "ux дизайнер",
			"product designer", "бүтээгдэхүүний дизайнер",
			"web designer", "веб дизайнер",
			"art director", "арт директор",
		},
		Keywords: []string{
			"design", "дизайн", "graphic", "график", "ui/ux",
			"user interface", "user experience", "creative", "бүтээлч",
			"adobe", "figma", "sketch", "photoshop", "illustrator",
		},
	},
	{
		Name: "technology",
		Titles: []string{
			"software engineer", "программист",
			"developer", "хөгжүүлэгч",
			"web developer", "веб хөгжүүлэгч",
			"frontend developer", "frontend хөгжүүлэгч",
			"backend developer", "backend хөгжүүлэгч",
			"full stack developer", "full stack хөгжүүлэгч",
		},
		Keywords: []string{
			"programming", "програмчлал", "coding", "кодчлол",
			"software", "программ хангамж", "development", "хөгжүүлэлт",
			"javascript", "python", "java", "react", "node",
		},
	},
	{
		Name: "finance",
		Titles: []string{
			"accountant", "нягтлан",
			"financial analyst", "санхүүгийн шинжээч",
			"finance manager", "санхүүгийн менежер",
			"financial controller", "санхүүгийн хянагч",
		},
		Keywords: []string{
			"finance", "санхүү", "accounting", "нягтлан бодох",
			"financial", "санхүүгийн", "banking", "банк", "budget", "төсөв",
		},
	},
	{
		Name: "sales",
		Titles: []string{
			"sales manager", "борлуулалтын менежер",
			"sales representative", "борлуулалтын төлөөлөгч",
			"business development", "бизнес хөгжүүлэлт",
		},
		Keywords: []string{
			"sales", "борлуулалт", "selling", "худалдаа",
			"business development", "бизнес хөгжүүлэлт",
			"account management", "хэрэглэгчийн удирдлага",
		},
	},
	{
		Name: "hr",
		Titles: []string{
			"hr manager", "хүний нөөцийн менежер",
			"recruiter", "ажилтан сонгон шалгаруулагч",
			"hr specialist", "хүний нөөцийн мэргэжилтэн",
		},
		Keywords: []string{
			"human resources", "хүний нөөц", "recruitment", "ажилтан авах",
			"hiring", "ажилд авах", "hr", "personnel", "боловсон хүчин",
		},
	},
	{
		Name: "engineering",
		Titles: []string{
			"engineer", "инженер",
			"mechanical engineer", "механик инженер",
			"civil engineer", "иргэний инженер",
			"electrical engineer", "цахилгаан инженер",
		},
		Keywords: []string{
			"engineering", "инженерчлэл", "mechanical", "механик",
			"electrical", "цахилгаан", "civil", "иргэний", "construction", "барилга",
		},
	},
	{
		Name: "content",
		Titles: []string{
			"content writer", "контент зохиогч",
			"copywriter", "копирайтер",
			"content creator", "контент бүтээгч",
			"editor", "редактор",
		},
		Keywords: []string{
			"content", "контент", "writing", "бичих",
			"copywriting", "копирайтинг", "editing", "редакторлах",
			"content creation", "контент бүтээх",
		},
	},
}
