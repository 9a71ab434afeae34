package services

import (
	"context"
	"log"
	"sync"
	"time"

	"threads-server/models"
	apperrors "threads-server/pkg/errors"
	"threads-server/repository"
)

// Pusher delivers an event to a user's live connection if one exists.
// *Registry satisfies it.
type Pusher interface {
	Push(userID string, event Event) bool
}

// LastMessage is the denormalized conversation summary.
type LastMessage struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

// Participant is the public slice of a user exposed in conversation lists.
type Participant struct {
	ID             string `json:"_id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// ConversationView is a conversation as returned to the caller: only the
// other participant is listed, so the client never has to work out which
// side it is.
type ConversationView struct {
	ID           string        `json:"_id"`
	Participants []Participant `json:"participants"`
	LastMessage  LastMessage   `json:"lastMessage"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// ChatService persists direct messages and pushes them to live recipients.
type ChatService struct {
	conversations repository.ConversationStore
	messages      repository.MessageStore
	media         MediaUploader
	presence      Pusher

	// pairMu serializes conversation creation per participant pair so two
	// racing first messages cannot create duplicate conversations.
	pairMu   sync.Mutex
	pairLock map[string]*sync.Mutex
}

func NewChatService(conversations repository.ConversationStore, messages repository.MessageStore, media MediaUploader, presence Pusher) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		media:         media,
		presence:      presence,
		pairLock:      make(map[string]*sync.Mutex),
	}
}

// SendMessage persists a message from sender to recipient and best-effort
// pushes it to the recipient's live connection. At least one of text and
// image must be set. The sender's own UI is updated from the returned
// message, never via push.
func (s *ChatService) SendMessage(ctx context.Context, senderID, recipientID, text, image string) (*models.Message, error) {
	if text == "" && image == "" {
		return nil, apperrors.ErrMessageEmpty
	}

	conversation, err := s.getOrCreateConversation(ctx, senderID, recipientID, text)
	if err != nil {
		return nil, err
	}

	if image != "" {
		hostedURL, err := s.media.Upload(ctx, image)
		if err != nil {
			return nil, apperrors.ErrUploadFailed(err)
		}
		image = hostedURL
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		Sender:         senderID,
		Text:           text,
		Image:          image,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	// The summary always records the outgoing text, even for image-only
	// sends. Existing client contract.
	if err := s.conversations.UpdateLastMessage(ctx, conversation.ID, text, senderID); err != nil {
		return nil, err
	}

	s.presence.Push(recipientID, Event{Event: EventNewMessage, Payload: message})

	return message, nil
}

// MarkSeen flips every unseen message in the conversation and notifies
// notifyUserID (the author of those messages) if they are online. Calling
// it again is a no-op with no error.
func (s *ChatService) MarkSeen(ctx context.Context, conversationID, notifyUserID string) error {
	if err := s.messages.MarkSeen(ctx, conversationID); err != nil {
		return err
	}

	s.presence.Push(notifyUserID, Event{Event: EventMessageSeen, Payload: conversationID})

	return nil
}

// GetMessages returns the caller's conversation history with the other
// user, oldest first. No conversation yet is a NotFound the client treats
// as an empty first-time chat.
func (s *ChatService) GetMessages(ctx context.Context, userID, otherUserID string) ([]models.Message, error) {
	conversation, err := s.conversations.FindByParticipants(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperrors.ErrConversationNotFound
	}

	return s.messages.ListByConversation(ctx, conversation.ID)
}

// GetConversations lists the caller's conversations with only the other
// participant's public fields.
func (s *ChatService) GetConversations(ctx context.Context, userID string) ([]ConversationView, error) {
	conversations, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		other := conversation.ParticipantAUser
		if conversation.ParticipantA == userID {
			other = conversation.ParticipantBUser
		}

		views = append(views, ConversationView{
			ID: conversation.ID,
			Participants: []Participant{{
				ID:             other.ID,
				Username:       other.Username,
				ProfilePicture: other.ProfilePicture,
			}},
			LastMessage: LastMessage{
				Text:   conversation.LastMessageText,
				Sender: conversation.LastMessageSender,
			},
			CreatedAt: conversation.CreatedAt,
		})
	}
	return views, nil
}

// getOrCreateConversation is the single place that resolves a participant
// pair to a conversation, creating one lazily on first contact. Creation
// is serialized per sorted pair; a database uniqueness constraint could
// replace the lock without touching callers.
func (s *ChatService) getOrCreateConversation(ctx context.Context, senderID, recipientID, text string) (*models.Conversation, error) {
	lock := s.lockForPair(senderID, recipientID)
	lock.Lock()
	defer lock.Unlock()

	conversation, err := s.conversations.FindByParticipants(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		return conversation, nil
	}

	conversation, err = s.conversations.Create(ctx, senderID, recipientID, text, senderID)
	if err != nil {
		return nil, err
	}
	log.Printf("Created conversation %s for %s and %s", conversation.ID, senderID, recipientID)
	return conversation, nil
}

func (s *ChatService) lockForPair(userA, userB string) *sync.Mutex {
	a, b := repository.SortPair(userA, userB)
	key := a + ":" + b

	s.pairMu.Lock()
	defer s.pairMu.Unlock()

	lock, ok := s.pairLock[key]
	if !ok {
		lock = &sync.Mutex{}
		s.pairLock[key] = lock
	}
	return lock
}
