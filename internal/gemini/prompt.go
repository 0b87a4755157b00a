package gemini

// EvaluationPrompt is the fixed rubric sent with every document. The model is
// instructed to answer with JSON only; the sanitizer still assumes it will
// not always comply.
const EvaluationPrompt = `Evaluate the attached terms-of-service document and identify the points a user should watch out for.
Base the evaluation strictly on the provided document; do not speculate or use information from outside it.
Answer in a tone that is friendly and accessible to ordinary users, with concrete, easy-to-follow explanations.
For every issue you raise, quote the relevant passage (clause number and exact wording) from the document.
Identify issues using the criteria below. The difficulty of the language itself is not part of the evaluation. This evaluation is an explanation for the user, not an improvement proposal to the service provider.

### Evaluation criteria
#### A. Housing and leases (financial terms)
- **Early-termination penalties**: amounts or conditions charged for cancelling mid-contract (e.g. what fraction of the remaining term is billed).
- **Renewal fee conditions and amounts**: how automatically accruing renewal fees are calculated and when they arise.
- **Restoration cost standards**: how the document draws the line between ordinary wear and tenant-caused damage.
- **Late-payment interest rates**: whether high default-interest rates (e.g. 14.6% per year) are stipulated.
- **Common-area / management fee increases**: vaguely worded unilateral increase rights (e.g. "as necessary").
- **Mandatory guarantor companies and their fees**: charges at signing and at renewal.
- **Key replacement costs**: who bears the cost of replacing keys or the entire security system.

#### B. Telecom and subscription services
- **Automatic international roaming charges**: conditions under which unintended connections are still billed.
- **Charges after reaching a data cap**: mechanisms that automatically purchase expensive additional data.
- **Automatic reversion to standard pricing after promotions**: conditions under which fees jump when a discount period ends.
- **Cancellation deadlines and penalties**: what is billed when a cancellation request misses the cutoff date.
- **Lump-sum device balance on early cancellation**: conditions converting installment payments into a one-time demand.
- **Concrete throttling conditions**: limits imposed under labels like "maintaining a fair network environment".

#### C. AI-related subscriptions
- **International transfer of personal data**: where data is stored and which law applies when it leaves the user's jurisdiction.
- **Use of input data**: whether inputs feed model training, and the degree and scope of anonymization.
- **Automatic plan renewal and price revisions**: renewals or price increases without prior notice.
- **API usage metering**: how tokens or requests are counted and billed on overage.
- **Automatic free-to-paid transitions**: conditions that silently move the user to a paid plan when a free quota is exceeded.

#### D. Financial products
##### Student loans and scholarships
- **Deferral and reduction application deadlines**: conditions under which a late application forfeits relief.
- **Prepayment fees**: charges for partial early repayment.

##### Student credit cards
- **Automatic revolving or installment settings**: the possibility of being switched to revolving payments unknowingly.
- **Foreign-exchange surcharges**: fees added on top of the displayed exchange rate.
- **Cash advance interest**: high rates (e.g. 18-20% per year).
- **Conditions for waived annual fees**: minimum usage counts or amounts.

### Response format
Answer in the following JSON format and output nothing but JSON:

{
  "evaluation": {
    "score": score (0-100),
    "issues": [
      {
        "issue": "brief description of the problem",
        "suggestion": "quote the relevant passage in quotation marks and explain the problem in detail"
      }
    ]
  },
  "corrected_text": "overall assessment of the whole document"
}

### Notes
1. Base the evaluation only on the presented document; do not speculate or use external information.
2. Describe issues concretely and clearly, quoting the relevant passages.
3. Explain in a friendly tone that users can easily understand.`
