package prompt

import (
	"sort"
	"sync"

	"github.com/ashprao/chatbox/internal/models"
)

// GPTTemplateName is the template every OpenAI chat model resolves to
const GPTTemplateName = "gpt"

var (
	registryMu sync.RWMutex
	registry   = map[string]*Template{}
)

// Register adds or replaces a template under its name
func Register(t *Template) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Name] = t
}

// Lookup returns a copy of the template for a model name
func Lookup(name string) (*Template, bool) {
	if models.IsGPTModel(name) {
		name = GPTTemplateName
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Names lists the registered template names in sorted order
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const (
	curiousHumanSystem = "A chat between a curious human and an artificial intelligence assistant. " +
		"The assistant gives helpful, detailed, and polite answers to the human's questions."
	curiousUserSystem = "A chat between a curious user and an artificial intelligence assistant. " +
		"The assistant gives helpful, detailed, and polite answers to the user's questions."
	instructionSystem = "Below is an instruction that describes a task. " +
		"Write a response that appropriately completes the request."
)

func init() {
	Register(&Template{
		Name:  GPTTemplateName,
		Chat:  true,
		Style: Llama2,
	})

	Register(&Template{
		Name:         "llama-2",
		System:       "<s>[INST] <<SYS>>" + SystemPlaceholder + "<</SYS>>\n\n",
		Roles:        [2]string{"[INST]", "[/INST]"},
		Style:        Llama2,
		Sep:          " ",
		Sep2:         " </s><s>",
		StopTokenIDs: []int{2},
	})

	Register(&Template{
		Name:                 "vicuna_v1.1",
		System:               SystemPlaceholder,
		DefaultSystemMessage: curiousUserSystem,
		Roles:                [2]string{"USER", "ASSISTANT"},
		Style:                AddColonTwo,
		Sep:                  " ",
		Sep2:                 "</s>",
	})

	Register(&Template{
		Name:                 "alpaca",
		System:               SystemPlaceholder,
		DefaultSystemMessage: instructionSystem,
		Roles:                [2]string{"### Instruction", "### Response"},
		Style:                AddColonTwo,
		Sep:                  "\n\n",
		Sep2:                 "</s>",
	})

	Register(&Template{
		Name:                 "zero_shot",
		System:               SystemPlaceholder,
		DefaultSystemMessage: curiousHumanSystem,
		Roles:                [2]string{"### Human", "### Assistant"},
		Style:                AddColonSingle,
		Sep:                  "\n### ",
		StopStr:              "###",
	})

	Register(&Template{
		Name:  "chatglm2",
		Roles: [2]string{"问", "答"},
		Style: ChatGLM,
		Sep:   "\n\n",
	})

	Register(&Template{
		Name:    "chatml",
		System:  "<|im_start|>system\n" + SystemPlaceholder,
		Roles:   [2]string{"<|im_start|>user", "<|im_start|>assistant"},
		Style:   ChatML,
		Sep:     "<|im_end|>",
		StopStr: "<|im_end|>",
	})

	Register(&Template{
		Name:                 "dolly_v2",
		System:               SystemPlaceholder + "\n\n",
		DefaultSystemMessage: instructionSystem,
		Roles:                [2]string{"### Instruction", "### Response"},
		Style:                Dolly,
		Sep:                  "\n\n",
		Sep2:                 "### End",
	})

	Register(&Template{
		Name:         "rwkv",
		Roles:        [2]string{"Bob", "Alice"},
		Style:        RWKV,
		StopStr:      "\n\n",
		StopTokenIDs: []int{0, 1, 2},
	})

	Register(&Template{
		Name:                 "phoenix",
		System:               SystemPlaceholder + "\n\n",
		DefaultSystemMessage: curiousHumanSystem,
		Roles:                [2]string{"Human", "Assistant"},
		Style:                Phoenix,
		Sep:                  "</s>",
	})

	Register(&Template{
		Name:                 "robin",
		System:               SystemPlaceholder,
		DefaultSystemMessage: curiousHumanSystem,
		Roles:                [2]string{"###Human", "###Assistant"},
		Style:                Robin,
		Sep:                  "\n",
		StopTokenIDs:         []int{2, 396},
		StopStr:              "###",
	})

	Register(&Template{
		Name:                 "internlm-chat",
		System:               ":" + SystemPlaceholder + "\n",
		DefaultSystemMessage: "You are an AI assistant whose name is InternLM (书生·浦语).",
		Roles:                [2]string{"<|User|>", "<|Bot|>"},
		Style:                ChatIntern,
		Sep:                  "<eoh>",
		Sep2:                 "<eoa>",
		StopTokenIDs:         []int{1, 103028},
		StopStr:              "<|User|>",
	})

	Register(&Template{
		Name:         "oasst_pythia",
		Roles:        [2]string{"<|prompter|>", "<|assistant|>"},
		Style:        NoColonSingle,
		Sep:          "<|endoftext|>",
		StopTokenIDs: []int{0},
	})
}
