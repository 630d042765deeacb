package ws

// Inbound event names.
const (
	EvGetOrCreatePrivateChat = "getOrCreatePrivateChat"
	EvNewMessage             = "newMessage"
	EvJoinChat               = "joinChat"
	EvGetUserChats           = "getUserChats"
	EvGetChat                = "getChat"
	EvGetChatMessages        = "getChatMessages"
	EvCreateChat             = "createChat"
)

// Outbound event names.
const (
	EvChat         = "chat"
	EvUserChats    = "userChats"
	EvChatMessages = "chatMessages"
	EvNewChat      = "newChat"
	EvNotification = "notification"
	EvError        = "errorMessage"
)

type privateChatPayload struct {
	UserID int `json:"userId" validate:"required,gt=0"`
}

type newMessagePayload struct {
	ChatID  int      `json:"chatId" validate:"gte=0"`
	UserID  int      `json:"userId" validate:"gte=0"`
	Message string   `json:"message"`
	Images  []string `json:"images" validate:"dive,startswith=data:"`
}

type chatIDPayload struct {
	ChatID int `json:"chatId" validate:"required,gt=0"`
}

type chatMessagesPayload struct {
	ChatID int `json:"chatId" validate:"required,gt=0"`
	Page   int `json:"page" validate:"omitempty,gte=1"`
	Limit  int `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

type createChatPayload struct {
	ParticipantIDs []int  `json:"participantIds" validate:"required,min=1,dive,gt=0"`
	ChatName       string `json:"chatName"`
	Avatar         string `json:"avatar" validate:"omitempty,startswith=data:"`
}

type errorPayload struct {
	Event string `json:"event,omitempty"`
	Error string `json:"error"`
}
