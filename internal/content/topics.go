package content

import "github.com/windfall/kidvocab_service/internal/model"

var topics = []model.Topic{
	{ID: "animals", Label: "Animals (动物)", Emoji: "🐼"},
	{ID: "food", Label: "Food (食物)", Emoji: "🍔"},
	{ID: "family", Label: "Family (家庭)", Emoji: "👨‍👩‍👧"},
	{ID: "school", Label: "School (学校)", Emoji: "🏫"},
	{ID: "colors", Label: "Colors (颜色)", Emoji: "🎨"},
	{ID: "body", Label: "Body (身体)", Emoji: "👀"},
	{ID: "actions", Label: "Actions (动作)", Emoji: "🏃"},
	{ID: "nature", Label: "Nature (自然)", Emoji: "🌳"},
}

var defaultWords = []model.WordEntry{
	{Word: "apple", Translation: "苹果", Example: "I like to eat a red apple.", Phonetic: "/ˈæpl/"},
	{Word: "dog", Translation: "狗", Example: "The dog is playing in the park.", Phonetic: "/dɒɡ/"},
	{Word: "book", Translation: "书", Example: "She is reading a book.", Phonetic: "/bʊk/"},
	{Word: "sun", Translation: "太阳", Example: "The sun is hot today.", Phonetic: "/sʌn/"},
	{Word: "happy", Translation: "开心的", Example: "I am happy to see you.", Phonetic: "/ˈhæpi/"},
}

var curated = map[string][]model.WordEntry{
	"animals": {
		{Word: "panda", Translation: "熊猫", Example: "The panda eats bamboo.", Phonetic: "/ˈpændə/"},
		{Word: "rabbit", Translation: "兔子", Example: "The rabbit has long ears.", Phonetic: "/ˈræbɪt/"},
		{Word: "fox", Translation: "狐狸", Example: "The fox runs very fast.", Phonetic: "/fɒks/"},
		{Word: "tiger", Translation: "老虎", Example: "A tiger has stripes.", Phonetic: "/ˈtaɪɡə/"},
		{Word: "monkey", Translation: "猴子", Example: "The monkey climbs the tree.", Phonetic: "/ˈmʌŋki/"},
		{Word: "elephant", Translation: "大象", Example: "The elephant is very big.", Phonetic: "/ˈelɪfənt/"},
	},
	"food": {
		{Word: "bread", Translation: "面包", Example: "I eat bread for breakfast.", Phonetic: "/bred/"},
		{Word: "milk", Translation: "牛奶", Example: "Drink your milk, please.", Phonetic: "/mɪlk/"},
		{Word: "rice", Translation: "米饭", Example: "We have rice for lunch.", Phonetic: "/raɪs/"},
		{Word: "egg", Translation: "鸡蛋", Example: "Mum cooks an egg for me.", Phonetic: "/eɡ/"},
		{Word: "noodles", Translation: "面条", Example: "I like beef noodles.", Phonetic: "/ˈnuːdlz/"},
		{Word: "juice", Translation: "果汁", Example: "Can I have some orange juice?", Phonetic: "/dʒuːs/"},
	},
	"family": {
		{Word: "mother", Translation: "妈妈", Example: "My mother is a teacher.", Phonetic: "/ˈmʌðə/"},
		{Word: "father", Translation: "爸爸", Example: "My father likes football.", Phonetic: "/ˈfɑːðə/"},
		{Word: "sister", Translation: "姐妹", Example: "My sister is seven years old.", Phonetic: "/ˈsɪstə/"},
		{Word: "brother", Translation: "兄弟", Example: "I play with my brother.", Phonetic: "/ˈbrʌðə/"},
		{Word: "grandma", Translation: "奶奶；外婆", Example: "Grandma tells us stories.", Phonetic: "/ˈɡrænmɑː/"},
		{Word: "baby", Translation: "婴儿", Example: "The baby is sleeping.", Phonetic: "/ˈbeɪbi/"},
	},
	"school": {
		{Word: "pencil", Translation: "铅笔", Example: "I write with a pencil.", Phonetic: "/ˈpensl/"},
		{Word: "ruler", Translation: "尺子", Example: "This ruler is long.", Phonetic: "/ˈruːlə/"},
		{Word: "teacher", Translation: "老师", Example: "Our teacher is kind.", Phonetic: "/ˈtiːtʃə/"},
		{Word: "desk", Translation: "课桌", Example: "Put your bag on the desk.", Phonetic: "/desk/"},
		{Word: "classroom", Translation: "教室", Example: "Our classroom is clean.", Phonetic: "/ˈklɑːsruːm/"},
		{Word: "bag", Translation: "书包", Example: "My bag is blue.", Phonetic: "/bæɡ/"},
	},
	"colors": {
		{Word: "red", Translation: "红色", Example: "The apple is red.", Phonetic: "/red/"},
		{Word: "blue", Translation: "蓝色", Example: "The sky is blue.", Phonetic: "/bluː/"},
		{Word: "green", Translation: "绿色", Example: "The grass is green.", Phonetic: "/ɡriːn/"},
		{Word: "yellow", Translation: "黄色", Example: "A banana is yellow.", Phonetic: "/ˈjeləʊ/"},
		{Word: "orange", Translation: "橙色", Example: "The fox is orange.", Phonetic: "/ˈɒrɪndʒ/"},
		{Word: "purple", Translation: "紫色", Example: "I have a purple hat.", Phonetic: "/ˈpɜːpl/"},
	},
	"body": {
		{Word: "eye", Translation: "眼睛", Example: "Close your eye and make a wish.", Phonetic: "/aɪ/"},
		{Word: "ear", Translation: "耳朵", Example: "The rabbit has a long ear.", Phonetic: "/ɪə/"},
		{Word: "nose", Translation: "鼻子", Example: "Touch your nose.", Phonetic: "/nəʊz/"},
		{Word: "mouth", Translation: "嘴巴", Example: "Open your mouth, please.", Phonetic: "/maʊθ/"},
		{Word: "hand", Translation: "手", Example: "Raise your hand.", Phonetic: "/hænd/"},
		{Word: "foot", Translation: "脚", Example: "My foot is cold.", Phonetic: "/fʊt/"},
	},
	"actions": {
		{Word: "run", Translation: "跑", Example: "I can run fast.", Phonetic: "/rʌn/"},
		{Word: "jump", Translation: "跳", Example: "The frog can jump high.", Phonetic: "/dʒʌmp/"},
		{Word: "swim", Translation: "游泳", Example: "Fish swim in the river.", Phonetic: "/swɪm/"},
		{Word: "sing", Translation: "唱歌", Example: "Let's sing a song.", Phonetic: "/sɪŋ/"},
		{Word: "dance", Translation: "跳舞", Example: "She likes to dance.", Phonetic: "/dɑːns/"},
		{Word: "read", Translation: "读", Example: "I read a book every day.", Phonetic: "/riːd/"},
	},
	"nature": {
		{Word: "tree", Translation: "树", Example: "The bird is in the tree.", Phonetic: "/triː/"},
		{Word: "flower", Translation: "花", Example: "This flower smells nice.", Phonetic: "/ˈflaʊə/"},
		{Word: "river", Translation: "河", Example: "The river is long.", Phonetic: "/ˈrɪvə/"},
		{Word: "mountain", Translation: "山", Example: "We climb the mountain.", Phonetic: "/ˈmaʊntən/"},
		{Word: "rain", Translation: "雨", Example: "I like the rain.", Phonetic: "/reɪn/"},
		{Word: "cloud", Translation: "云", Example: "The cloud is white.", Phonetic: "/klaʊd/"},
	},
}
